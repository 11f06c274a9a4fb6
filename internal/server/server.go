package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/manvel7/Antd-small-test/internal/store"
	"github.com/manvel7/Antd-small-test/internal/user"
)

// Repository is the storage the server needs. *store.Store implements it.
type Repository interface {
	List(ctx context.Context) ([]user.Record, error)
	ListPage(ctx context.Context, page, limit int) (store.Page, error)
	Search(ctx context.Context, q string) ([]user.Record, error)
	Get(ctx context.Context, id string) (user.Record, error)
	Create(ctx context.Context, in user.Input) (user.Record, error)
	Update(ctx context.Context, id string, in user.Input) (user.Record, error)
	Patch(ctx context.Context, id string, p user.Patch) (user.Record, error)
	Delete(ctx context.Context, id string) error
}

// DefaultBasePath is the path prefix of every route.
const DefaultBasePath = "/api"

// shutdownTimeout bounds how long Run waits for in-flight requests.
const shutdownTimeout = 5 * time.Second

// Server serves the users API.
type Server struct {
	repo     Repository
	basePath string
	logger   *slog.Logger
	router   *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithBasePath sets the route prefix. "" or "/" mounts routes at the root.
func WithBasePath(p string) Option {
	return func(s *Server) {
		s.basePath = strings.TrimRight(p, "/")
	}
}

// WithLogger sets the request logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// New creates a Server over repo and registers its routes.
func New(repo Repository, opts ...Option) *Server {
	s := &Server{
		repo:     repo,
		basePath: DefaultBasePath,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.logRequests)

	api := router
	if s.basePath != "" {
		api = router.PathPrefix(s.basePath).Subrouter()
	}

	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	// /users/search must be registered before /users/{id}.
	api.HandleFunc("/users", s.handleListUsers).Methods(http.MethodGet)
	api.HandleFunc("/users", s.handleCreateUser).Methods(http.MethodPost)
	api.HandleFunc("/users/search", s.handleSearchUsers).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", s.handleGetUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", s.handleUpdateUser).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}", s.handlePatchUser).Methods(http.MethodPatch)
	api.HandleFunc("/users/{id}", s.handleDeleteUser).Methods(http.MethodDelete)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "not_found", "route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	return router
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	s.logger.Info("server listening", "addr", addr, "base_path", s.basePath)

	select {
	case <-ctx.Done():
		s.logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err, ok := <-serverErr:
		if !ok {
			return nil
		}
		return err
	}
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
