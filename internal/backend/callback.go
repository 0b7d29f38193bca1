package backend

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"
)

// oauthTimeout is how long the callback server waits for the user to finish
// the provider consent screen.
const oauthTimeout = 5 * time.Minute

// CallbackServer captures an OAuth redirect on a loopback port. Providers
// deliver tokens in the URL fragment, which browsers never send to the
// server, so /callback serves a page whose script forwards the fragment to
// /complete as a query string. A per-flow nonce ties /complete to the page
// we served, so another local process cannot inject tokens.
type CallbackServer struct {
	port     int
	nonce    string
	tokens   chan [2]string
	failures chan error
}

// NewCallbackServer prepares a capture on the given loopback port. Call
// RedirectURI to get the address to hand the provider, then Wait.
func NewCallbackServer(port int) *CallbackServer {
	return &CallbackServer{
		port:     port,
		nonce:    oauth2.GenerateVerifier(),
		tokens:   make(chan [2]string, 1),
		failures: make(chan error, 1),
	}
}

// RedirectURI is the loopback address the provider should redirect to.
func (s *CallbackServer) RedirectURI() string {
	return fmt.Sprintf("http://127.0.0.1:%d/callback", s.port)
}

// Wait serves the callback endpoints until a token pair arrives, the flow
// fails, the timeout passes, or ctx is canceled.
func (s *CallbackServer) Wait(ctx context.Context) (accessToken, refreshToken string, err error) {
	r := chi.NewRouter()
	r.Get("/callback", s.handleCallback)
	r.Get("/complete", s.handleComplete)

	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", s.port))
	if err != nil {
		return "", "", fmt.Errorf("starting callback server: %w", err)
	}

	server := &http.Server{Handler: r}
	go func() {
		if err := server.Serve(listener); err != http.ErrServerClosed {
			s.failures <- fmt.Errorf("callback server: %w", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	select {
	case pair := <-s.tokens:
		return pair[0], pair[1], nil
	case err := <-s.failures:
		return "", "", err
	case <-time.After(oauthTimeout):
		return "", "", fmt.Errorf("sign-in timed out after %v", oauthTimeout)
	case <-ctx.Done():
		return "", "", ctx.Err()
	}
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>Signing in…</title></head>
<body>
<script>
var params = window.location.hash ? window.location.hash.substring(1) : window.location.search.substring(1);
window.location.replace("/complete?nonce=%s&" + params);
</script>
</body>
</html>`, s.nonce)
}

func (s *CallbackServer) handleComplete(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("nonce") != s.nonce {
		http.Error(w, "Unexpected request", http.StatusBadRequest)
		return
	}

	if errMsg := r.URL.Query().Get("error_description"); errMsg != "" {
		s.failures <- fmt.Errorf("provider rejected sign-in: %s", errMsg)
		http.Error(w, "Sign-in failed", http.StatusBadRequest)
		return
	}

	access, refresh, err := ExtractTokens(r.URL.String())
	if err != nil {
		s.failures <- err
		http.Error(w, "Sign-in failed", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>Signed in</title></head>
<body style="font-family: system-ui; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0;">
<div style="text-align: center;">
<h1 style="color: #10B981;">Signed in</h1>
<p>You can close this window and return to the app.</p>
</div>
</body>
</html>`)
	s.tokens <- [2]string{access, refresh}
}
