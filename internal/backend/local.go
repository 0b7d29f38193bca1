package backend

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/meltforce/gymtrack/internal/models"
)

// LocalBackend is the null variant for offline-only builds: nothing is
// persisted remotely. Accounts are fabricated from the email address at
// sign-in and live only in the local cache; data calls succeed without doing
// anything; blobs are copied into a directory on disk.
type LocalBackend struct {
	hub     *authHub
	blobDir string
	log     *slog.Logger

	mu      sync.Mutex
	session *Session
}

// NewLocal creates the local-only backend. blobDir receives photo uploads.
func NewLocal(blobDir string, log *slog.Logger) *LocalBackend {
	return &LocalBackend{
		hub:     newAuthHub(),
		blobDir: blobDir,
		log:     log,
	}
}

func (b *LocalBackend) Name() string      { return "local" }
func (b *LocalBackend) Auth() AuthService { return b }
func (b *LocalBackend) Data() DataService { return localData{} }
func (b *LocalBackend) Blobs() BlobService {
	return &localBlobs{dir: b.blobDir, log: b.log}
}

// SignInWithPassword fabricates a session for any email; the password is not
// checked because there is nothing to check it against.
func (b *LocalBackend) SignInWithPassword(ctx context.Context, email, _ string) (*Session, error) {
	return b.installSession(email, displayNameFromEmail(email)), nil
}

func (b *LocalBackend) SignUpWithPassword(ctx context.Context, email, _ string, displayName string) (*SignUpResult, error) {
	if displayName == "" {
		displayName = displayNameFromEmail(email)
	}
	return &SignUpResult{Session: b.installSession(email, displayName)}, nil
}

func (b *LocalBackend) OAuthAuthorizeURL(provider string) (string, error) {
	return "", fmt.Errorf("local backend has no OAuth provider %q", provider)
}

func (b *LocalBackend) SetSessionFromTokens(ctx context.Context, _, _ string) (*Session, error) {
	return nil, fmt.Errorf("local backend has no OAuth sessions")
}

func (b *LocalBackend) SignOut(ctx context.Context) error {
	b.mu.Lock()
	b.session = nil
	b.mu.Unlock()
	b.hub.publish(AuthUpdate{Event: EventSignedOut})
	return nil
}

func (b *LocalBackend) SendPasswordReset(ctx context.Context, email string) error { return nil }

func (b *LocalBackend) ResendConfirmation(ctx context.Context, email string) error { return nil }

func (b *LocalBackend) CurrentSession(ctx context.Context) (*Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session, nil
}

func (b *LocalBackend) Subscribe(fn func(AuthUpdate)) func() {
	return b.hub.Subscribe(fn)
}

func (b *LocalBackend) installSession(email, displayName string) *Session {
	s := &Session{
		AccountID:   uuid.NewString(),
		Email:       email,
		DisplayName: displayName,
	}
	b.mu.Lock()
	b.session = s
	b.mu.Unlock()
	b.hub.publish(AuthUpdate{Event: EventSignedIn, Session: s})
	return s
}

func displayNameFromEmail(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}

// localData persists nothing; lists are empty so a sync never overwrites the
// cache-hydrated state (non-empty wins).
type localData struct{}

func (localData) GetAccount(context.Context, string) (*models.Account, error)    { return nil, nil }
func (localData) UpsertAccount(context.Context, models.Account) error            { return nil }
func (localData) ListWorkouts(context.Context, string) ([]models.Workout, error) { return nil, nil }
func (localData) UpsertWorkout(context.Context, models.Workout) error            { return nil }
func (localData) DeleteWorkout(context.Context, string) error                    { return nil }
func (localData) ListCustomExercises(context.Context, string) ([]models.Exercise, error) {
	return nil, nil
}
func (localData) UpsertCustomExercise(context.Context, string, models.Exercise) error { return nil }
func (localData) ListBodyWeights(context.Context, string) ([]models.BodyWeight, error) {
	return nil, nil
}
func (localData) UpsertBodyWeight(context.Context, models.BodyWeight) error { return nil }
func (localData) DeleteBodyWeight(context.Context, string) error            { return nil }
func (localData) ListMeasurements(context.Context, string) ([]models.BodyMeasurement, error) {
	return nil, nil
}
func (localData) UpsertMeasurement(context.Context, models.BodyMeasurement) error { return nil }
func (localData) DeleteMeasurement(context.Context, string) error                 { return nil }
func (localData) ListProgressPhotos(context.Context, string) ([]models.ProgressPhoto, error) {
	return nil, nil
}
func (localData) UpsertProgressPhoto(context.Context, models.ProgressPhoto) error { return nil }
func (localData) DeleteProgressPhoto(context.Context, string) error               { return nil }
func (localData) ListPersonalRecords(context.Context, string) ([]models.PersonalRecord, error) {
	return nil, nil
}
func (localData) UpsertPersonalRecord(context.Context, models.PersonalRecord) error { return nil }
func (localData) ListGoals(context.Context, string) ([]models.Goal, error)          { return nil, nil }
func (localData) UpsertGoal(context.Context, models.Goal) error                     { return nil }
func (localData) DeleteGoal(context.Context, string) error                          { return nil }
func (localData) ListTemplates(context.Context, string) ([]models.WorkoutTemplate, error) {
	return nil, nil
}
func (localData) UpsertTemplate(context.Context, models.WorkoutTemplate) error { return nil }
func (localData) DeleteTemplate(context.Context, string) error                 { return nil }
func (localData) GetNotificationSettings(context.Context, string) (*models.NotificationSettings, error) {
	return nil, nil
}
func (localData) UpsertNotificationSettings(context.Context, string, models.NotificationSettings) error {
	return nil
}

// localBlobs stores photo bytes under dir/{accountId}/{blobId}.jpg and hands
// back a file:// URI.
type localBlobs struct {
	dir string
	log *slog.Logger
}

func (b *localBlobs) Upload(ctx context.Context, accountID string, data []byte, blobID string) (string, error) {
	dir := filepath.Join(b.dir, accountID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating blob dir: %w", err)
	}
	path := filepath.Join(dir, blobID+".jpg")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing blob: %w", err)
	}
	return "file://" + path, nil
}

func (b *localBlobs) Delete(ctx context.Context, accountID, blobID string) error {
	path := filepath.Join(b.dir, accountID, blobID+".jpg")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		b.log.Warn("blob delete failed", "path", path, "error", err)
	}
	return nil
}
