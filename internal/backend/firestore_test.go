package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/meltforce/gymtrack/internal/models"
)

// newRESTServer creates an httptest server that routes requests to handler
// functions keyed by path. Unexpected paths fail the test.
func newRESTServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeRESTJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// newTestFirestore points every Firebase endpoint at the test server.
func newTestFirestore(srv *httptest.Server) *FirestoreBackend {
	fb := NewFirestore("proj-1", "api-key", "http://localhost/callback", discardLogger())
	fb.identityURL = srv.URL
	fb.docsURL = srv.URL
	fb.storageURL = srv.URL
	return fb
}

func TestFirestoreSignInInstallsSession(t *testing.T) {
	srv := newRESTServer(t, map[string]http.HandlerFunc{
		"/accounts:signInWithPassword": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("key"); got != "api-key" {
				t.Errorf("key=%q, want api-key", got)
			}
			var payload map[string]any
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Fatal(err)
			}
			if payload["email"] != "casey@example.com" {
				t.Errorf("email=%v", payload["email"])
			}
			if payload["returnSecureToken"] != true {
				t.Error("returnSecureToken missing")
			}
			writeRESTJSON(t, w, identitySession{
				IDToken:      "id-token",
				RefreshToken: "refresh-token",
				LocalID:      "uid-1",
				Email:        "casey@example.com",
				DisplayName:  "Casey",
			})
		},
	})
	defer srv.Close()

	fb := newTestFirestore(srv)
	var events []AuthEvent
	unsub := fb.Subscribe(func(u AuthUpdate) { events = append(events, u.Event) })
	defer unsub()

	session, err := fb.SignInWithPassword(context.Background(), "casey@example.com", "secret1")
	if err != nil {
		t.Fatalf("SignInWithPassword: %v", err)
	}
	if session.AccountID != "uid-1" || session.DisplayName != "Casey" || session.AccessToken != "id-token" {
		t.Errorf("session = %+v", session)
	}

	current, _ := fb.CurrentSession(context.Background())
	if current == nil || current.AccountID != "uid-1" {
		t.Errorf("current session = %+v", current)
	}
	if len(events) != 1 || events[0] != EventSignedIn {
		t.Errorf("events = %v", events)
	}
}

func TestFirestoreSignInFillsDisplayNameFromEmail(t *testing.T) {
	srv := newRESTServer(t, map[string]http.HandlerFunc{
		"/accounts:signInWithPassword": func(w http.ResponseWriter, r *http.Request) {
			writeRESTJSON(t, w, identitySession{
				IDToken: "id-token", LocalID: "uid-1", Email: "jordan@example.com",
			})
		},
	})
	defer srv.Close()

	session, err := newTestFirestore(srv).SignInWithPassword(context.Background(), "jordan@example.com", "secret1")
	if err != nil {
		t.Fatalf("SignInWithPassword: %v", err)
	}
	if session.DisplayName != "jordan" {
		t.Errorf("display name = %q, want jordan", session.DisplayName)
	}
}

func TestFirestoreAuthErrorClassification(t *testing.T) {
	tests := []struct {
		code string
		want FailureReason
	}{
		{"EMAIL_NOT_FOUND", ReasonInvalidCredentials},
		{"INVALID_PASSWORD", ReasonInvalidCredentials},
		{"INVALID_LOGIN_CREDENTIALS", ReasonInvalidCredentials},
		{"TOO_MANY_ATTEMPTS_TRY_LATER", ReasonRateLimited},
		{"EMAIL_EXISTS", ReasonEmailTaken},
		{"UNVERIFIED_EMAIL", ReasonEmailUnconfirmed},
		{"OPERATION_NOT_ALLOWED", ReasonUnknown},
	}

	var code string
	srv := newRESTServer(t, map[string]http.HandlerFunc{
		"/accounts:signInWithPassword": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			writeRESTJSON(t, w, map[string]any{"error": map[string]any{"message": code}})
		},
	})
	defer srv.Close()

	fb := newTestFirestore(srv)
	for _, tt := range tests {
		code = tt.code
		_, err := fb.SignInWithPassword(context.Background(), "casey@example.com", "secret1")
		var authErr *AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("%s: err = %v, want AuthError", tt.code, err)
		}
		if authErr.Reason != tt.want {
			t.Errorf("%s: reason = %q, want %q", tt.code, authErr.Reason, tt.want)
		}
	}
}

func TestFirestoreListFollowsPageTokens(t *testing.T) {
	makeDoc := func(t *testing.T, id string, created time.Time) firestoreDoc {
		t.Helper()
		fields, err := recordToFields(models.Workout{
			ID: id, UserID: "acct-1", Name: "Push Day",
			Date: "2024-06-10", StartTime: created, CreatedAt: created,
		})
		if err != nil {
			t.Fatal(err)
		}
		return firestoreDoc{Name: "projects/proj-1/databases/(default)/documents/users/acct-1/workouts/" + id, Fields: fields}
	}

	base := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	srv := newRESTServer(t, map[string]http.HandlerFunc{
		"/projects/proj-1/databases/(default)/documents/users/acct-1/workouts": func(w http.ResponseWriter, r *http.Request) {
			switch token := r.URL.Query().Get("pageToken"); token {
			case "":
				writeRESTJSON(t, w, map[string]any{
					"documents":     []firestoreDoc{makeDoc(t, "w-1", base), makeDoc(t, "w-2", base.Add(time.Hour))},
					"nextPageToken": "page-2",
				})
			case "page-2":
				writeRESTJSON(t, w, map[string]any{
					"documents": []firestoreDoc{makeDoc(t, "w-3", base.Add(2 * time.Hour))},
				})
			default:
				t.Errorf("unexpected pageToken %q", token)
				http.NotFound(w, r)
			}
		},
	})
	defer srv.Close()

	fb := newTestFirestore(srv)
	workouts, err := fb.Data().ListWorkouts(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("ListWorkouts: %v", err)
	}
	if len(workouts) != 3 {
		t.Fatalf("got %d workouts, want 3", len(workouts))
	}
	// Newest first regardless of page order.
	for i, want := range []string{"w-3", "w-2", "w-1"} {
		if workouts[i].ID != want {
			t.Errorf("workouts[%d].ID = %q, want %q", i, workouts[i].ID, want)
		}
	}
}

func TestFirestoreBlobUpload(t *testing.T) {
	payload := []byte("jpeg bytes")
	srv := newRESTServer(t, map[string]http.HandlerFunc{
		"/b/proj-1.appspot.com/o": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("name"); got != "acct-1/photo-1.jpg" {
				t.Errorf("name=%q", got)
			}
			body, _ := io.ReadAll(r.Body)
			if !bytes.Equal(body, payload) {
				t.Errorf("body = %q", body)
			}
			writeRESTJSON(t, w, map[string]any{"downloadTokens": "tok-1"})
		},
	})
	defer srv.Close()

	fb := newTestFirestore(srv)
	uri, err := fb.Blobs().Upload(context.Background(), "acct-1", payload, "photo-1")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	want := srv.URL + "/b/proj-1.appspot.com/o/acct-1%2Fphoto-1.jpg?alt=media&token=tok-1"
	if uri != want {
		t.Errorf("uri = %q, want %q", uri, want)
	}
}

func TestFirestoreBlobDeleteToleratesMissing(t *testing.T) {
	srv := newRESTServer(t, map[string]http.HandlerFunc{
		"/b/proj-1.appspot.com/o/acct-1/photo-1.jpg": func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		},
	})
	defer srv.Close()

	fb := newTestFirestore(srv)
	if err := fb.Blobs().Delete(context.Background(), "acct-1", "photo-1"); err != nil {
		t.Errorf("Delete: %v", err)
	}
}
