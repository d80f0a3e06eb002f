package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// callbackServer is a one-shot local HTTP server receiving the wallet's
// redirect. Only a callback carrying the expected state is accepted.
type callbackServer struct {
	server   *http.Server
	listener net.Listener
	state    string
	result   chan url.Values
	err      chan error
	mu       sync.Mutex
	done     bool
}

func newCallbackServer(state string) (*callbackServer, error) {
	// Listen on random available port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to create listener: %w", err)
	}

	cs := &callbackServer{
		listener: listener,
		state:    state,
		result:   make(chan url.Values, 1),
		err:      make(chan error, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", cs.handleCallback)
	mux.HandleFunc("/health", cs.handleHealth)

	cs.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := cs.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			cs.err <- fmt.Errorf("callback server error: %w", err)
		}
	}()

	return cs, nil
}

// CallbackURL is the redirect target handed to the wallet.
func (cs *callbackServer) CallbackURL() string {
	return fmt.Sprintf("http://%s/callback", cs.listener.Addr().String())
}

// Close shuts down the server. It is safe to call more than once.
func (cs *callbackServer) Close() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.done {
		return nil
	}
	cs.done = true

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return cs.server.Shutdown(ctx)
}

func (cs *callbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	cs.mu.Lock()
	if cs.done {
		cs.mu.Unlock()
		http.Error(w, "Request already completed", http.StatusGone)
		return
	}
	cs.mu.Unlock()

	query := r.URL.Query()
	if query.Get("state") != cs.state {
		http.Error(w, "Unknown request", http.StatusBadRequest)
		return
	}

	// Deliver before responding so the waiter never misses a result the
	// browser already saw acknowledged.
	select {
	case cs.result <- query:
	default:
		http.Error(w, "Request already completed", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>SiHiRi</title></head>
<body style="font-family: Arial, sans-serif; text-align: center; padding: 50px;">
    <h1>Done</h1>
    <p>You can now close this browser window and return to your terminal.</p>
</body>
</html>`)
}

func (cs *callbackServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"server": "sihiri-wallet-callback",
	})
}
