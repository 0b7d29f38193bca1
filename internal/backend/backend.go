// Package backend defines the remote persistence contract and its three
// interchangeable implementations: a local-only null backend, a Firestore
// document-store backend, and a Supabase relational backend. The variant is
// chosen by configuration at startup; callers only see the Backend interface.
package backend

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/meltforce/gymtrack/internal/models"
)

// Session is an authenticated remote session.
type Session struct {
	AccountID    string
	Email        string
	DisplayName  string
	AccessToken  string
	RefreshToken string
}

// SignUpResult reports the outcome of a password sign-up. Session is nil when
// the provider requires email confirmation before issuing tokens.
type SignUpResult struct {
	Session           *Session
	NeedsConfirmation bool
}

// AuthEvent is the kind of change reported to auth subscribers.
type AuthEvent string

const (
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// AuthUpdate is delivered to subscribers on every auth state change.
type AuthUpdate struct {
	Event   AuthEvent
	Session *Session
}

// FailureReason is the small set of user-facing auth failure categories.
// Everything else surfaces as ReasonUnknown.
type FailureReason string

const (
	ReasonInvalidCredentials FailureReason = "invalid_credentials"
	ReasonRateLimited        FailureReason = "rate_limited"
	ReasonEmailUnconfirmed   FailureReason = "email_unconfirmed"
	ReasonEmailTaken         FailureReason = "email_taken"
	ReasonUnknown            FailureReason = "unknown"
)

// AuthError is an authentication failure carrying its user-facing category.
type AuthError struct {
	Reason FailureReason
	Err    error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth: %s: %v", e.Reason, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Message returns the display text for the failure.
func (e *AuthError) Message() string {
	switch e.Reason {
	case ReasonInvalidCredentials:
		return "Invalid email or password."
	case ReasonRateLimited:
		return "Too many attempts. Please wait a moment and try again."
	case ReasonEmailUnconfirmed:
		return "Please confirm your email address before signing in."
	case ReasonEmailTaken:
		return "An account with this email already exists."
	default:
		return "Something went wrong. Please try again."
	}
}

// ErrNoTokens is returned when an OAuth callback URL carries neither an
// access token nor a refresh token.
var ErrNoTokens = errors.New("no tokens found in redirect URL")

// AuthService is the authentication sub-contract of a backend.
type AuthService interface {
	// SignInWithPassword exchanges credentials for a session.
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	// SignUpWithPassword registers a new account. The returned session is
	// nil while email confirmation is pending.
	SignUpWithPassword(ctx context.Context, email, password, displayName string) (*SignUpResult, error)
	// OAuthAuthorizeURL returns the provider authorization URL to open in a
	// browser. The flow completes via SetSessionFromTokens once the redirect
	// lands.
	OAuthAuthorizeURL(provider string) (string, error)
	// SetSessionFromTokens installs tokens extracted from an OAuth redirect.
	SetSessionFromTokens(ctx context.Context, accessToken, refreshToken string) (*Session, error)
	// SignOut invalidates the remote session.
	SignOut(ctx context.Context) error
	// SendPasswordReset emails a reset link.
	SendPasswordReset(ctx context.Context, email string) error
	// ResendConfirmation re-sends the sign-up confirmation email.
	ResendConfirmation(ctx context.Context, email string) error
	// CurrentSession returns the active session, or nil when signed out.
	CurrentSession(ctx context.Context) (*Session, error)
	// Subscribe registers a callback for auth changes and returns an
	// unsubscribe func.
	Subscribe(fn func(AuthUpdate)) (unsubscribe func())
}

// DataService is the per-category persistence sub-contract. List calls return
// newest-first by creation time, except personal records and custom exercises
// which are unordered sets. Every call may fail; callers treat failures as
// "remote unavailable" and keep local state authoritative.
type DataService interface {
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)
	UpsertAccount(ctx context.Context, account models.Account) error

	ListWorkouts(ctx context.Context, accountID string) ([]models.Workout, error)
	UpsertWorkout(ctx context.Context, w models.Workout) error
	DeleteWorkout(ctx context.Context, id string) error

	ListCustomExercises(ctx context.Context, accountID string) ([]models.Exercise, error)
	UpsertCustomExercise(ctx context.Context, accountID string, e models.Exercise) error

	ListBodyWeights(ctx context.Context, accountID string) ([]models.BodyWeight, error)
	UpsertBodyWeight(ctx context.Context, bw models.BodyWeight) error
	DeleteBodyWeight(ctx context.Context, id string) error

	ListMeasurements(ctx context.Context, accountID string) ([]models.BodyMeasurement, error)
	UpsertMeasurement(ctx context.Context, m models.BodyMeasurement) error
	DeleteMeasurement(ctx context.Context, id string) error

	ListProgressPhotos(ctx context.Context, accountID string) ([]models.ProgressPhoto, error)
	UpsertProgressPhoto(ctx context.Context, p models.ProgressPhoto) error
	DeleteProgressPhoto(ctx context.Context, id string) error

	ListPersonalRecords(ctx context.Context, accountID string) ([]models.PersonalRecord, error)
	UpsertPersonalRecord(ctx context.Context, pr models.PersonalRecord) error

	ListGoals(ctx context.Context, accountID string) ([]models.Goal, error)
	UpsertGoal(ctx context.Context, g models.Goal) error
	DeleteGoal(ctx context.Context, id string) error

	ListTemplates(ctx context.Context, accountID string) ([]models.WorkoutTemplate, error)
	UpsertTemplate(ctx context.Context, t models.WorkoutTemplate) error
	DeleteTemplate(ctx context.Context, id string) error

	GetNotificationSettings(ctx context.Context, accountID string) (*models.NotificationSettings, error)
	UpsertNotificationSettings(ctx context.Context, accountID string, s models.NotificationSettings) error
}

// BlobService stores progress photo bytes outside the record store. Uploads
// return a stable public URI; upload and delete address the same object via
// the {accountId}/{blobId}.jpg convention.
type BlobService interface {
	Upload(ctx context.Context, accountID string, data []byte, blobID string) (string, error)
	Delete(ctx context.Context, accountID, blobID string) error
}

// Backend bundles the three sub-contracts of one remote variant.
type Backend interface {
	Name() string
	Auth() AuthService
	Data() DataService
	Blobs() BlobService
}

// ExtractTokens pulls access and refresh tokens out of an OAuth redirect URL.
// Providers deliver tokens in the fragment for implicit flows and in the
// query string otherwise; both are checked. Both tokens must be present.
func ExtractTokens(rawURL string) (accessToken, refreshToken string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("parsing redirect URL: %w", err)
	}

	for _, raw := range []string{u.Fragment, u.RawQuery} {
		params, err := url.ParseQuery(raw)
		if err != nil {
			continue
		}
		access := params.Get("access_token")
		refresh := params.Get("refresh_token")
		if access != "" && refresh != "" {
			return access, refresh, nil
		}
	}
	return "", "", ErrNoTokens
}
