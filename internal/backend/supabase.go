package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// photoBucket is the Supabase Storage bucket holding progress photos.
const photoBucket = "progress-photos"

// SupabaseBackend is the relational variant: GoTrue REST for auth, Postgres
// over pgx for data, and Supabase Storage for photo blobs.
type SupabaseBackend struct {
	projectURL  string
	anonKey     string
	redirectURI string
	httpClient  *http.Client
	pool        *pgxpool.Pool
	hub         *authHub
	log         *slog.Logger

	mu      sync.Mutex
	session *Session
}

// NewSupabase connects to the project's Postgres database and prepares the
// REST clients. redirectURI is where OAuth providers send the browser after
// consent.
func NewSupabase(ctx context.Context, projectURL, anonKey, dsn, redirectURI string, log *slog.Logger) (*SupabaseBackend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &SupabaseBackend{
		projectURL:  strings.TrimRight(projectURL, "/"),
		anonKey:     anonKey,
		redirectURI: redirectURI,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		pool: pool,
		hub:  newAuthHub(),
		log:  log,
	}, nil
}

// Close releases the database pool.
func (sb *SupabaseBackend) Close() {
	sb.pool.Close()
}

func (sb *SupabaseBackend) Name() string       { return "supabase" }
func (sb *SupabaseBackend) Auth() AuthService  { return sb }
func (sb *SupabaseBackend) Data() DataService  { return &supabaseData{pool: sb.pool} }
func (sb *SupabaseBackend) Blobs() BlobService { return &supabaseBlobs{sb: sb} }

// goTrueError is GoTrue's error envelope. Older deployments use msg, newer
// ones add error_code.
type goTrueError struct {
	Code             string `json:"error_code"`
	Msg              string `json:"msg"`
	ErrorDescription string `json:"error_description"`
}

// goTrueSession is the token grant response.
type goTrueSession struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	User         goTrueUser `json:"user"`
}

type goTrueUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		Name     string `json:"name"`
		FullName string `json:"full_name"`
	} `json:"user_metadata"`
}

func (u goTrueUser) displayName() string {
	if u.UserMetadata.Name != "" {
		return u.UserMetadata.Name
	}
	if u.UserMetadata.FullName != "" {
		return u.UserMetadata.FullName
	}
	return displayNameFromEmail(u.Email)
}

func (sb *SupabaseBackend) authCall(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshaling auth request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, sb.projectURL+"/auth/v1"+path, body)
	if err != nil {
		return fmt.Errorf("building auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", sb.anonKey)
	if token := sb.accessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		req.Header.Set("Authorization", "Bearer "+sb.anonKey)
	}

	resp, err := sb.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling auth endpoint: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var ge goTrueError
		if json.Unmarshal(data, &ge) == nil && (ge.Code != "" || ge.Msg != "" || ge.ErrorDescription != "") {
			return classifyGoTrueError(ge)
		}
		return fmt.Errorf("auth request failed (status %d): %s", resp.StatusCode, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding auth response: %w", err)
		}
	}
	return nil
}

// classifyGoTrueError maps GoTrue error codes onto the auth failure
// categories callers can present.
func classifyGoTrueError(ge goTrueError) error {
	msg := ge.Msg
	if msg == "" {
		msg = ge.ErrorDescription
	}
	base := fmt.Errorf("gotrue: %s: %s", ge.Code, msg)
	switch {
	case ge.Code == "invalid_credentials" || strings.Contains(msg, "Invalid login credentials"):
		return &AuthError{Reason: ReasonInvalidCredentials, Err: base}
	case strings.HasPrefix(ge.Code, "over_") || strings.Contains(msg, "rate limit"):
		return &AuthError{Reason: ReasonRateLimited, Err: base}
	case ge.Code == "email_not_confirmed" || strings.Contains(msg, "Email not confirmed"):
		return &AuthError{Reason: ReasonEmailUnconfirmed, Err: base}
	case ge.Code == "user_already_exists" || ge.Code == "email_exists" || strings.Contains(msg, "already registered"):
		return &AuthError{Reason: ReasonEmailTaken, Err: base}
	default:
		return &AuthError{Reason: ReasonUnknown, Err: base}
	}
}

func (sb *SupabaseBackend) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var gs goTrueSession
	err := sb.authCall(ctx, http.MethodPost, "/token?grant_type=password", map[string]any{
		"email":    email,
		"password": password,
	}, &gs)
	if err != nil {
		return nil, err
	}
	return sb.installGoTrueSession(gs), nil
}

func (sb *SupabaseBackend) SignUpWithPassword(ctx context.Context, email, password, displayName string) (*SignUpResult, error) {
	var gs goTrueSession
	err := sb.authCall(ctx, http.MethodPost, "/signup", map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]any{"name": displayName},
	}, &gs)
	if err != nil {
		return nil, err
	}
	// GoTrue withholds tokens until the address is confirmed.
	if gs.AccessToken == "" {
		return &SignUpResult{NeedsConfirmation: true}, nil
	}
	return &SignUpResult{Session: sb.installGoTrueSession(gs)}, nil
}

func (sb *SupabaseBackend) installGoTrueSession(gs goTrueSession) *Session {
	session := &Session{
		AccountID:    gs.User.ID,
		Email:        gs.User.Email,
		DisplayName:  gs.User.displayName(),
		AccessToken:  gs.AccessToken,
		RefreshToken: gs.RefreshToken,
	}

	sb.mu.Lock()
	sb.session = session
	sb.mu.Unlock()

	sb.hub.publish(AuthUpdate{Event: EventSignedIn, Session: session})
	return session
}

// OAuthAuthorizeURL builds the GoTrue authorization URL; the provider sends
// the browser back to the configured redirect with tokens in the fragment.
func (sb *SupabaseBackend) OAuthAuthorizeURL(provider string) (string, error) {
	q := url.Values{}
	q.Set("provider", provider)
	q.Set("redirect_to", sb.redirectURI)
	return sb.projectURL + "/auth/v1/authorize?" + q.Encode(), nil
}

// SetSessionFromTokens validates a token pair captured from an OAuth
// redirect against /user, then installs the session.
func (sb *SupabaseBackend) SetSessionFromTokens(ctx context.Context, accessToken, refreshToken string) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sb.projectURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("building user request: %w", err)
	}
	req.Header.Set("apikey", sb.anonKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := sb.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, &AuthError{Reason: ReasonInvalidCredentials, Err: fmt.Errorf("token rejected (status %d): %s", resp.StatusCode, data)}
	}

	var user goTrueUser
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("decoding user: %w", err)
	}

	return sb.installGoTrueSession(goTrueSession{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}), nil
}

func (sb *SupabaseBackend) SignOut(ctx context.Context) error {
	err := sb.authCall(ctx, http.MethodPost, "/logout", nil, nil)

	sb.mu.Lock()
	sb.session = nil
	sb.mu.Unlock()
	sb.hub.publish(AuthUpdate{Event: EventSignedOut})

	if err != nil {
		// The local session is gone either way; the remote one expires.
		sb.log.Warn("remote sign-out failed", "error", err)
	}
	return nil
}

func (sb *SupabaseBackend) SendPasswordReset(ctx context.Context, email string) error {
	return sb.authCall(ctx, http.MethodPost, "/recover", map[string]any{"email": email}, nil)
}

func (sb *SupabaseBackend) ResendConfirmation(ctx context.Context, email string) error {
	return sb.authCall(ctx, http.MethodPost, "/resend", map[string]any{
		"type":  "signup",
		"email": email,
	}, nil)
}

func (sb *SupabaseBackend) CurrentSession(ctx context.Context) (*Session, error) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.session, nil
}

func (sb *SupabaseBackend) Subscribe(fn func(AuthUpdate)) func() {
	return sb.hub.Subscribe(fn)
}

func (sb *SupabaseBackend) accessToken() string {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	if sb.session == nil {
		return ""
	}
	return sb.session.AccessToken
}

// supabaseBlobs stores photo bytes in the progress-photos Storage bucket
// under {accountId}/{blobId}.jpg and serves them from the public URL.
type supabaseBlobs struct {
	sb *SupabaseBackend
}

func (b *supabaseBlobs) objectURL(prefix, accountID, blobID string) string {
	return fmt.Sprintf("%s/storage/v1/object%s/%s/%s/%s.jpg", b.sb.projectURL, prefix, photoBucket, accountID, blobID)
}

func (b *supabaseBlobs) Upload(ctx context.Context, accountID string, data []byte, blobID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.objectURL("", accountID, blobID), bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")
	req.Header.Set("apikey", b.sb.anonKey)
	req.Header.Set("Authorization", "Bearer "+b.sb.accessToken())
	req.Header.Set("x-upsert", "true")

	resp, err := b.sb.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("uploading photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("photo upload failed (status %d): %s", resp.StatusCode, body)
	}
	return b.objectURL("/public", accountID, blobID), nil
}

func (b *supabaseBlobs) Delete(ctx context.Context, accountID, blobID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, b.objectURL("", accountID, blobID), nil)
	if err != nil {
		return fmt.Errorf("building delete request: %w", err)
	}
	req.Header.Set("apikey", b.sb.anonKey)
	req.Header.Set("Authorization", "Bearer "+b.sb.accessToken())

	resp, err := b.sb.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deleting photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("photo delete failed (status %d): %s", resp.StatusCode, body)
	}
	return nil
}
