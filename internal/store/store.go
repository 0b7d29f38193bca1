// Package store is the data layer's single owned instance: it holds the
// in-memory state for the signed-in account, keeps the local cache in sync
// with it synchronously, and converges the remote backend best-effort. Local
// state is authoritative for the device; remote reads only overwrite it when
// they return records (non-empty wins).
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/meltforce/gymtrack/internal/backend"
	"github.com/meltforce/gymtrack/internal/cache"
	"github.com/meltforce/gymtrack/internal/models"
)

// Status is the session lifecycle state.
type Status string

const (
	StatusUnauthenticated Status = "unauthenticated"
	StatusAuthenticating  Status = "authenticating"
	StatusAuthenticated   Status = "authenticated"
)

// remoteTimeout bounds every fire-and-forget remote call.
const remoteTimeout = 30 * time.Second

// ErrValidation wraps input problems caught before any I/O.
var ErrValidation = errors.New("validation")

// Store owns all account-scoped state for the current session. All reads and
// mutations go through one mutex; remote completions that arrive after a
// sign-in/sign-out boundary are dropped by an auth generation check.
type Store struct {
	cache   *cache.Cache
	backend backend.Backend
	log     *slog.Logger
	now     func() time.Time

	mu  sync.Mutex
	gen int

	status         Status
	account        *models.Account
	currentWorkout *models.Workout
	workouts       []models.Workout
	exercises      []models.Exercise
	bodyWeights    []models.BodyWeight
	measurements   []models.BodyMeasurement
	photos         []models.ProgressPhoto
	records        []models.PersonalRecord
	goals          []models.Goal
	templates      []models.WorkoutTemplate
	notifications  models.NotificationSettings
	onboarded      bool
	theme          string

	subMu  sync.Mutex
	nextID int
	subs   map[int]func()
}

// New creates the store. It starts Unauthenticated; nothing is loaded until
// a sign-in succeeds.
func New(c *cache.Cache, b backend.Backend, log *slog.Logger) *Store {
	return &Store{
		cache:   c,
		backend: b,
		log:     log,
		now:     time.Now,
		status:  StatusUnauthenticated,
		subs:    make(map[int]func()),
	}
}

// Subscribe registers a callback invoked after every published state change.
// The returned func unsubscribes.
func (s *Store) Subscribe(fn func()) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) publish() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// persist writes one namespace to the local cache. Cache failures are logged
// and swallowed; the in-memory state already carries the change.
func (s *Store) persist(namespace string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error("encoding cache value", "namespace", namespace, "error", err)
		return
	}
	if err := s.cache.Set(namespace, data); err != nil {
		s.log.Warn("cache write failed", "namespace", namespace, "error", err)
	}
}

// hydrate loads one namespace from the cache into out. Missing namespaces
// and cache failures leave out untouched.
func (s *Store) hydrate(namespace string, out any) {
	data, err := s.cache.Get(namespace)
	if errors.Is(err, cache.ErrNotFound) {
		return
	}
	if err != nil {
		s.log.Warn("cache read failed", "namespace", namespace, "error", err)
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.log.Warn("decoding cache value", "namespace", namespace, "error", err)
	}
}

// remote runs a backend write in the background. Failures are logged unless
// the session has changed since the call was issued.
func (s *Store) remote(op string, gen int, fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.mu.Lock()
			stale := gen != s.gen
			s.mu.Unlock()
			if !stale {
				s.log.Warn("remote write failed", "op", op, "error", err)
			}
		}
	}()
}

// validateEmail and validatePassword run before any I/O; failures wrap
// ErrValidation and cause no state change.
func validateEmail(email string) error {
	if !strings.Contains(email, "@") || strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: enter a valid email address", ErrValidation)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	return nil
}

// SignIn authenticates with email and password, hydrates state from the
// cache, and kicks off the background remote sync.
func (s *Store) SignIn(ctx context.Context, email, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := validatePassword(password); err != nil {
		return err
	}

	s.setStatus(StatusAuthenticating)
	session, err := s.backend.Auth().SignInWithPassword(ctx, email, password)
	if err != nil {
		s.setStatus(StatusUnauthenticated)
		return err
	}

	s.installSession(session)
	return nil
}

// SignUp registers a new account. When the provider requires email
// confirmation no session is installed and NeedsConfirmation is reported.
func (s *Store) SignUp(ctx context.Context, email, password, displayName string) (needsConfirmation bool, err error) {
	if err := validateEmail(email); err != nil {
		return false, err
	}
	if err := validatePassword(password); err != nil {
		return false, err
	}

	s.setStatus(StatusAuthenticating)
	result, err := s.backend.Auth().SignUpWithPassword(ctx, email, password, displayName)
	if err != nil {
		s.setStatus(StatusUnauthenticated)
		return false, err
	}
	if result.NeedsConfirmation || result.Session == nil {
		s.setStatus(StatusUnauthenticated)
		return true, nil
	}

	s.installSession(result.Session)
	return false, nil
}

// BeginOAuth returns the provider authorization URL to open in a browser.
// The flow completes via CompleteOAuth with the captured redirect URL.
func (s *Store) BeginOAuth(provider string) (string, error) {
	return s.backend.Auth().OAuthAuthorizeURL(provider)
}

// CompleteOAuth extracts tokens from the redirect URL and installs the
// resulting session. A redirect without both tokens fails the attempt.
func (s *Store) CompleteOAuth(ctx context.Context, redirectURL string) error {
	access, refresh, err := backend.ExtractTokens(redirectURL)
	if err != nil {
		return err
	}

	s.setStatus(StatusAuthenticating)
	session, err := s.backend.Auth().SetSessionFromTokens(ctx, access, refresh)
	if err != nil {
		s.setStatus(StatusUnauthenticated)
		return err
	}

	s.installSession(session)
	return nil
}

// SendPasswordReset asks the backend to email a reset link.
func (s *Store) SendPasswordReset(ctx context.Context, email string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	return s.backend.Auth().SendPasswordReset(ctx, email)
}

// ResendConfirmation re-sends the sign-up confirmation email.
func (s *Store) ResendConfirmation(ctx context.Context, email string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	return s.backend.Auth().ResendConfirmation(ctx, email)
}

func (s *Store) setStatus(status Status) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	s.publish()
}

// installSession transitions to Authenticated: builds the account, hydrates
// every namespace from the cache synchronously, then pulls each category
// from the remote in the background.
func (s *Store) installSession(session *backend.Session) {
	s.mu.Lock()
	s.gen++
	gen := s.gen

	account := &models.Account{
		ID:          session.AccountID,
		Email:       session.Email,
		DisplayName: session.DisplayName,
		CreatedAt:   s.now(),
		UpdatedAt:   s.now(),
		Profile: models.Profile{
			Name:  session.DisplayName,
			Units: models.UnitsMetric,
		},
		Subscription: models.PlanFree,
	}
	s.account = account
	s.currentWorkout = nil
	s.workouts = nil
	s.exercises = append([]models.Exercise(nil), models.BuiltinExercises...)
	s.bodyWeights = nil
	s.measurements = nil
	s.photos = nil
	s.records = nil
	s.goals = nil
	s.templates = nil
	s.notifications = models.DefaultNotificationSettings()
	s.onboarded = false
	s.theme = ""

	s.hydrate(cache.NSUser, s.account)
	s.hydrate(cache.NSWorkouts, &s.workouts)
	s.hydrate(cache.NSExercises, &s.exercises)
	s.hydrate(cache.NSBodyWeights, &s.bodyWeights)
	s.hydrate(cache.NSMeasurements, &s.measurements)
	s.hydrate(cache.NSPhotos, &s.photos)
	s.hydrate(cache.NSRecords, &s.records)
	s.hydrate(cache.NSGoals, &s.goals)
	s.hydrate(cache.NSTemplates, &s.templates)
	s.hydrate(cache.NSNotifications, &s.notifications)
	s.hydrate(cache.NSOnboarded, &s.onboarded)
	s.hydrate(cache.NSTheme, &s.theme)

	// The hydrated account may belong to the previous holder of this cache
	// directory; trust the fresh session's identity fields.
	s.account.ID = session.AccountID
	s.account.Email = session.Email
	if session.DisplayName != "" {
		s.account.DisplayName = session.DisplayName
	}

	s.status = StatusAuthenticated
	accountID := session.AccountID
	s.mu.Unlock()

	s.publish()
	go s.syncRemote(gen, accountID)
}

// SignOut invalidates the remote session best-effort, clears all in-memory
// state, and removes every cache namespace.
func (s *Store) SignOut(ctx context.Context) error {
	if err := s.backend.Auth().SignOut(ctx); err != nil {
		s.log.Warn("remote sign-out failed", "error", err)
	}

	s.mu.Lock()
	s.gen++
	s.status = StatusUnauthenticated
	s.account = nil
	s.currentWorkout = nil
	s.workouts = nil
	s.exercises = nil
	s.bodyWeights = nil
	s.measurements = nil
	s.photos = nil
	s.records = nil
	s.goals = nil
	s.templates = nil
	s.notifications = models.NotificationSettings{}
	s.onboarded = false
	s.theme = ""
	s.mu.Unlock()

	if err := s.cache.RemoveAll(); err != nil {
		s.log.Warn("clearing cache failed", "error", err)
	}
	s.publish()
	return nil
}

// syncRemote pulls every category concurrently. A category's result only
// replaces state when it is non-empty; empty and failed fetches leave the
// cache-hydrated value alone. Completions from a stale generation are
// dropped.
func (s *Store) syncRemote(gen int, accountID string) {
	ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
	defer cancel()

	data := s.backend.Data()

	var wg sync.WaitGroup
	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				s.log.Warn("remote sync failed", "category", name, "error", err)
			}
		}()
	}

	run("account", func() error { return s.syncAccount(ctx, gen, accountID) })
	run("workouts", func() error {
		remote, err := data.ListWorkouts(ctx, accountID)
		if err != nil {
			return err
		}
		applySync(s, gen, cache.NSWorkouts, remote, func() { s.workouts = remote })
		return nil
	})
	run("exercises", func() error {
		remote, err := data.ListCustomExercises(ctx, accountID)
		if err != nil {
			return err
		}
		if len(remote) == 0 {
			return nil
		}
		merged := append(append([]models.Exercise(nil), models.BuiltinExercises...), remote...)
		s.mu.Lock()
		if gen != s.gen {
			s.mu.Unlock()
			return nil
		}
		s.exercises = merged
		s.persist(cache.NSExercises, merged)
		s.mu.Unlock()
		s.publish()
		return nil
	})
	run("body_weights", func() error {
		remote, err := data.ListBodyWeights(ctx, accountID)
		if err != nil {
			return err
		}
		applySync(s, gen, cache.NSBodyWeights, remote, func() { s.bodyWeights = remote })
		return nil
	})
	run("measurements", func() error {
		remote, err := data.ListMeasurements(ctx, accountID)
		if err != nil {
			return err
		}
		applySync(s, gen, cache.NSMeasurements, remote, func() { s.measurements = remote })
		return nil
	})
	run("photos", func() error {
		remote, err := data.ListProgressPhotos(ctx, accountID)
		if err != nil {
			return err
		}
		applySync(s, gen, cache.NSPhotos, remote, func() { s.photos = remote })
		return nil
	})
	run("records", func() error {
		remote, err := data.ListPersonalRecords(ctx, accountID)
		if err != nil {
			return err
		}
		applySync(s, gen, cache.NSRecords, remote, func() { s.records = remote })
		return nil
	})
	run("goals", func() error {
		remote, err := data.ListGoals(ctx, accountID)
		if err != nil {
			return err
		}
		applySync(s, gen, cache.NSGoals, remote, func() { s.goals = remote })
		return nil
	})
	run("templates", func() error {
		remote, err := data.ListTemplates(ctx, accountID)
		if err != nil {
			return err
		}
		applySync(s, gen, cache.NSTemplates, remote, func() { s.templates = remote })
		return nil
	})
	run("notifications", func() error {
		remote, err := data.GetNotificationSettings(ctx, accountID)
		if err != nil {
			return err
		}
		if remote == nil {
			return nil
		}
		s.mu.Lock()
		if gen != s.gen {
			s.mu.Unlock()
			return nil
		}
		s.notifications = *remote
		s.persist(cache.NSNotifications, *remote)
		s.mu.Unlock()
		s.publish()
		return nil
	})

	wg.Wait()
}

// applySync installs a non-empty remote category result under the generation
// guard and mirrors it to the cache. Empty results are dropped so a remote
// read can never clobber a populated local state with nothing.
func applySync[T any](s *Store, gen int, namespace string, remote []T, set func()) {
	if len(remote) == 0 {
		return
	}
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	set()
	s.persist(namespace, remote)
	s.mu.Unlock()
	s.publish()
}

// syncAccount fetches the remote account. A missing remote account is seeded
// from the local one so later devices find it.
func (s *Store) syncAccount(ctx context.Context, gen int, accountID string) error {
	remote, err := s.backend.Data().GetAccount(ctx, accountID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if gen != s.gen || s.account == nil {
		s.mu.Unlock()
		return nil
	}
	if remote == nil {
		local := *s.account
		s.mu.Unlock()
		return s.backend.Data().UpsertAccount(ctx, local)
	}
	s.account = remote
	s.persist(cache.NSUser, *remote)
	s.mu.Unlock()
	s.publish()
	return nil
}
