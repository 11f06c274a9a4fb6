package testutil

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/manvel7/Antd-small-test/internal/server"
	"github.com/manvel7/Antd-small-test/internal/store"
)

// API is an in-process users API over an in-memory store.
//
// IDs are deterministic: u-1, u-2, ... in creation order. Requests can be
// made to fail with FailNext.
type API struct {
	Store  *store.Store
	Server *httptest.Server
	Faults *FaultInjector
}

// StartAPI starts a fresh API. Callers must Close it.
func StartAPI() (*API, error) {
	st, err := store.Open(":memory:", store.WithIDGenerator(store.NewSequenceGenerator("u")))
	if err != nil {
		return nil, fmt.Errorf("open in-memory store: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	faults := &FaultInjector{next: server.New(st, server.WithLogger(logger))}
	return &API{
		Store:  st,
		Server: httptest.NewServer(faults),
		Faults: faults,
	}, nil
}

// BaseURL returns the API root to hand to a client.
func (a *API) BaseURL() string {
	return a.Server.URL + server.DefaultBasePath
}

// Close stops the server and closes the store.
func (a *API) Close() error {
	a.Server.Close()
	return a.Store.Close()
}

// FaultInjector wraps a handler and fails queued requests.
//
// Thread-safety: all methods are safe for concurrent use.
type FaultInjector struct {
	next http.Handler

	mu      sync.Mutex
	pending []int
	served  int
}

// FailNext makes the next request that has no earlier fault queued
// answer with status and a JSON error envelope. A status of 0 passes that
// request through, which lets a later fault target a specific request.
func (f *FaultInjector) FailNext(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, status)
}

// Pending returns the number of queued faults.
func (f *FaultInjector) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// Served returns the number of requests seen, failed ones included.
func (f *FaultInjector) Served() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.served
}

func (f *FaultInjector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.served++
	status := 0
	if len(f.pending) > 0 {
		status = f.pending[0]
		f.pending = f.pending[1:]
	}
	f.mu.Unlock()

	if status != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"message":"injected failure","code":"injected","success":false}`+"\n")
		return
	}
	f.next.ServeHTTP(w, r)
}
