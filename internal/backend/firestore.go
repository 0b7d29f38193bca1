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
)

const (
	identityToolkitURL = "https://identitytoolkit.googleapis.com/v1"
	firestoreURL       = "https://firestore.googleapis.com/v1"
	firebaseStorageURL = "https://firebasestorage.googleapis.com/v0"
)

// FirestoreBackend talks to a Firebase project over its REST surface:
// Identity Toolkit for auth, Firestore documents for data, and Firebase
// Storage for photo blobs. Records live under users/{uid}/{collection}/{id}.
type FirestoreBackend struct {
	projectID   string
	apiKey      string
	redirectURI string
	identityURL string
	docsURL     string
	storageURL  string
	httpClient  *http.Client
	hub         *authHub
	log         *slog.Logger

	mu      sync.Mutex
	session *Session
}

// NewFirestore creates a backend bound to the given Firebase project.
// redirectURI is where OAuth providers send the browser after consent.
func NewFirestore(projectID, apiKey, redirectURI string, log *slog.Logger) *FirestoreBackend {
	return &FirestoreBackend{
		projectID:   projectID,
		apiKey:      apiKey,
		redirectURI: redirectURI,
		identityURL: identityToolkitURL,
		docsURL:     firestoreURL,
		storageURL:  firebaseStorageURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		hub: newAuthHub(),
		log: log,
	}
}

func (fb *FirestoreBackend) Name() string       { return "firestore" }
func (fb *FirestoreBackend) Auth() AuthService  { return fb }
func (fb *FirestoreBackend) Data() DataService  { return &firestoreData{fb: fb} }
func (fb *FirestoreBackend) Blobs() BlobService { return &firestoreBlobs{fb: fb} }

// identityError is the error envelope Identity Toolkit responds with.
type identityError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// identitySession is the shared shape of signInWithPassword and signUp
// responses.
type identitySession struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
}

func (fb *FirestoreBackend) identityCall(ctx context.Context, action string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling %s request: %w", action, err)
	}

	endpoint := fmt.Sprintf("%s/accounts:%s?key=%s", fb.identityURL, action, url.QueryEscape(fb.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("building %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := fb.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", action, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		var ie identityError
		if json.Unmarshal(body, &ie) == nil && ie.Error.Message != "" {
			return classifyIdentityError(ie.Error.Message)
		}
		return fmt.Errorf("%s failed (status %d): %s", action, resp.StatusCode, body)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decoding %s response: %w", action, err)
		}
	}
	return nil
}

// classifyIdentityError maps Identity Toolkit error codes onto the auth
// failure categories callers can present.
func classifyIdentityError(code string) error {
	base := fmt.Errorf("identity toolkit: %s", code)
	switch {
	case code == "EMAIL_NOT_FOUND", code == "INVALID_PASSWORD",
		strings.HasPrefix(code, "INVALID_LOGIN_CREDENTIALS"):
		return &AuthError{Reason: ReasonInvalidCredentials, Err: base}
	case strings.HasPrefix(code, "TOO_MANY_ATTEMPTS"):
		return &AuthError{Reason: ReasonRateLimited, Err: base}
	case code == "EMAIL_EXISTS":
		return &AuthError{Reason: ReasonEmailTaken, Err: base}
	case code == "UNVERIFIED_EMAIL":
		return &AuthError{Reason: ReasonEmailUnconfirmed, Err: base}
	default:
		return &AuthError{Reason: ReasonUnknown, Err: base}
	}
}

func (fb *FirestoreBackend) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var is identitySession
	err := fb.identityCall(ctx, "signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &is)
	if err != nil {
		return nil, err
	}
	return fb.installIdentitySession(is), nil
}

func (fb *FirestoreBackend) SignUpWithPassword(ctx context.Context, email, password, displayName string) (*SignUpResult, error) {
	var is identitySession
	err := fb.identityCall(ctx, "signUp", map[string]any{
		"email":             email,
		"password":          password,
		"displayName":       displayName,
		"returnSecureToken": true,
	}, &is)
	if err != nil {
		return nil, err
	}
	return &SignUpResult{Session: fb.installIdentitySession(is)}, nil
}

func (fb *FirestoreBackend) installIdentitySession(is identitySession) *Session {
	session := &Session{
		AccountID:    is.LocalID,
		Email:        is.Email,
		DisplayName:  is.DisplayName,
		AccessToken:  is.IDToken,
		RefreshToken: is.RefreshToken,
	}
	if session.DisplayName == "" {
		session.DisplayName = displayNameFromEmail(session.Email)
	}

	fb.mu.Lock()
	fb.session = session
	fb.mu.Unlock()

	fb.hub.publish(AuthUpdate{Event: EventSignedIn, Session: session})
	return session
}

// OAuthAuthorizeURL asks Identity Toolkit to mint a provider authorization
// URL for the given identity provider (e.g. "google").
func (fb *FirestoreBackend) OAuthAuthorizeURL(provider string) (string, error) {
	var out struct {
		AuthURI string `json:"authUri"`
	}
	err := fb.identityCall(context.Background(), "createAuthUri", map[string]any{
		"providerId":  provider + ".com",
		"continueUri": fb.redirectURI,
	}, &out)
	if err != nil {
		return "", fmt.Errorf("creating auth uri: %w", err)
	}
	return out.AuthURI, nil
}

// SetSessionFromTokens validates a token pair captured from an OAuth
// redirect by looking the account up, then installs the session.
func (fb *FirestoreBackend) SetSessionFromTokens(ctx context.Context, accessToken, refreshToken string) (*Session, error) {
	var out struct {
		Users []struct {
			LocalID     string `json:"localId"`
			Email       string `json:"email"`
			DisplayName string `json:"displayName"`
		} `json:"users"`
	}
	if err := fb.identityCall(ctx, "lookup", map[string]any{"idToken": accessToken}, &out); err != nil {
		return nil, fmt.Errorf("looking up account: %w", err)
	}
	if len(out.Users) == 0 {
		return nil, &AuthError{Reason: ReasonInvalidCredentials, Err: fmt.Errorf("token matched no account")}
	}

	u := out.Users[0]
	return fb.installIdentitySession(identitySession{
		IDToken:      accessToken,
		RefreshToken: refreshToken,
		LocalID:      u.LocalID,
		Email:        u.Email,
		DisplayName:  u.DisplayName,
	}), nil
}

func (fb *FirestoreBackend) SignOut(ctx context.Context) error {
	fb.mu.Lock()
	fb.session = nil
	fb.mu.Unlock()
	fb.hub.publish(AuthUpdate{Event: EventSignedOut})
	return nil
}

func (fb *FirestoreBackend) SendPasswordReset(ctx context.Context, email string) error {
	return fb.identityCall(ctx, "sendOobCode", map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, nil)
}

func (fb *FirestoreBackend) ResendConfirmation(ctx context.Context, email string) error {
	fb.mu.Lock()
	session := fb.session
	fb.mu.Unlock()
	if session == nil {
		return fmt.Errorf("no active session to resend confirmation for")
	}
	return fb.identityCall(ctx, "sendOobCode", map[string]any{
		"requestType": "VERIFY_EMAIL",
		"idToken":     session.AccessToken,
	}, nil)
}

func (fb *FirestoreBackend) CurrentSession(ctx context.Context) (*Session, error) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.session, nil
}

func (fb *FirestoreBackend) Subscribe(fn func(AuthUpdate)) func() {
	return fb.hub.Subscribe(fn)
}

func (fb *FirestoreBackend) accessToken() string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.session == nil {
		return ""
	}
	return fb.session.AccessToken
}

// firestoreBlobs stores photo blobs in the project's default Storage bucket.
type firestoreBlobs struct {
	fb *FirestoreBackend
}

func (b *firestoreBlobs) bucket() string {
	return b.fb.projectID + ".appspot.com"
}

func (b *firestoreBlobs) authorize(req *http.Request) {
	if token := b.fb.accessToken(); token != "" {
		req.Header.Set("Authorization", "Firebase "+token)
	}
}

func (b *firestoreBlobs) Upload(ctx context.Context, accountID string, data []byte, blobID string) (string, error) {
	object := accountID + "/" + blobID + ".jpg"
	endpoint := fmt.Sprintf("%s/b/%s/o?name=%s", b.fb.storageURL, b.bucket(), url.QueryEscape(object))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")
	b.authorize(req)

	resp, err := b.fb.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("uploading photo: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("photo upload failed (status %d): %s", resp.StatusCode, body)
	}

	var meta struct {
		DownloadTokens string `json:"downloadTokens"`
	}
	if err := json.Unmarshal(body, &meta); err != nil {
		return "", fmt.Errorf("decoding upload response: %w", err)
	}

	downloadURL := fmt.Sprintf("%s/b/%s/o/%s?alt=media", b.fb.storageURL, b.bucket(), url.QueryEscape(object))
	if meta.DownloadTokens != "" {
		downloadURL += "&token=" + url.QueryEscape(meta.DownloadTokens)
	}
	return downloadURL, nil
}

func (b *firestoreBlobs) Delete(ctx context.Context, accountID, blobID string) error {
	object := accountID + "/" + blobID + ".jpg"
	endpoint := fmt.Sprintf("%s/b/%s/o/%s", b.fb.storageURL, b.bucket(), url.QueryEscape(object))

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building delete request: %w", err)
	}
	b.authorize(req)

	resp, err := b.fb.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deleting photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("photo delete failed (status %d): %s", resp.StatusCode, body)
	}
	return nil
}
