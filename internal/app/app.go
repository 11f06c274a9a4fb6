// Package app wires the user table lifecycle together:
//
//	config -> client -> collection -> session + confirm.Gate -> table
//
// App is what a presentation layer drives. It adds revalidation on top of
// the components: after a successful submit or delete the stale list is
// re-fetched so the table shows what the server holds.
package app

import (
	"context"
	"log/slog"

	"github.com/manvel7/Antd-small-test/internal/client"
	"github.com/manvel7/Antd-small-test/internal/collection"
	"github.com/manvel7/Antd-small-test/internal/config"
	"github.com/manvel7/Antd-small-test/internal/confirm"
	"github.com/manvel7/Antd-small-test/internal/session"
	"github.com/manvel7/Antd-small-test/internal/table"
	"github.com/manvel7/Antd-small-test/internal/user"
)

// App is the composed user table.
type App struct {
	Config     *config.Config
	Client     *client.Client
	Collection *collection.Collection
	Session    *session.Session
	Gate       *confirm.Gate
	Table      *table.Table

	logger *slog.Logger
}

type options struct {
	repo       collection.Repository
	logger     *slog.Logger
	presenter  func(confirm.Dialog)
	clientOpts []client.Option
}

// Option configures New.
type Option func(*options)

// WithRepository replaces the HTTP client as the collection's backend.
func WithRepository(repo collection.Repository) Option {
	return func(o *options) {
		o.repo = repo
	}
}

// WithLogger sets the logger shared by all components.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithPresenter registers the function that shows confirmation dialogs.
// It runs on its own goroutine and must answer through App.Gate.
func WithPresenter(fn func(confirm.Dialog)) Option {
	return func(o *options) {
		o.presenter = fn
	}
}

// WithClientOptions passes extra options to the HTTP client.
func WithClientOptions(opts ...client.Option) Option {
	return func(o *options) {
		o.clientOpts = append(o.clientOpts, opts...)
	}
}

// New builds an App from cfg.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	a := &App{Config: cfg, logger: o.logger}

	repo := o.repo
	if repo == nil {
		clientOpts := []client.Option{client.WithTimeout(cfg.Timeout())}
		if cfg.EnableLogging {
			clientOpts = append(clientOpts, client.WithLogger(o.logger))
		}
		clientOpts = append(clientOpts, o.clientOpts...)
		a.Client = client.New(cfg.APIBaseURL, clientOpts...)
		repo = a.Client
	}

	a.Collection = collection.New(repo, collection.WithLogger(o.logger))
	a.Session = session.New(a.Collection, session.WithLogger(o.logger))

	gateOpts := []confirm.Option{confirm.WithLogger(o.logger)}
	if o.presenter != nil {
		gateOpts = append(gateOpts, confirm.WithOnOpen(o.presenter))
	}
	a.Gate = confirm.New(gateOpts...)

	a.Table = table.New(a.Collection, a.Session, a.Gate,
		table.WithPageSize(cfg.PageSize),
		table.WithLogger(o.logger),
	)

	o.logger.Debug("app ready",
		"api_base_url", cfg.APIBaseURL,
		"environment", cfg.Environment,
		"timeout", cfg.Timeout(),
	)
	return a, nil
}

// Load fetches the list if it is stale and returns the table view.
func (a *App) Load(ctx context.Context) (table.View, error) {
	_, err := a.Collection.Load(ctx)
	return a.Table.View(), err
}

// Refresh re-fetches the list unconditionally.
func (a *App) Refresh(ctx context.Context) (table.View, error) {
	err := a.Collection.Refresh(ctx)
	return a.Table.View(), err
}

// OpenCreate opens an empty create form.
func (a *App) OpenCreate() error {
	return a.Table.Create()
}

// OpenEdit opens the edit form for row id.
func (a *App) OpenEdit(id string) error {
	return a.Table.Edit(id)
}

// SetField changes one form field.
func (a *App) SetField(f user.Field, value string) error {
	return a.Session.SetField(f, value)
}

// Cancel closes the form.
func (a *App) Cancel() error {
	return a.Session.Cancel()
}

// Submit submits the form and, on success, revalidates the list.
func (a *App) Submit(ctx context.Context) (user.Record, error) {
	rec, err := a.Session.Submit(ctx)
	if err != nil {
		return user.Record{}, err
	}
	a.revalidate(ctx)
	return rec, nil
}

// Delete asks for confirmation, deletes row id if accepted and then
// revalidates the list.
func (a *App) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := a.Table.Delete(ctx, id)
	if ok && err == nil {
		a.revalidate(ctx)
	}
	return ok, err
}

// revalidate re-fetches a stale list. A failure here does not undo the
// mutation; the list stays stale and the fetch error shows in the view.
func (a *App) revalidate(ctx context.Context) {
	if _, err := a.Collection.Load(ctx); err != nil {
		a.logger.Warn("revalidate after mutation failed", "error", err)
	}
}

// State is a debug dump of every component.
type State struct {
	Config     *config.Config  `json:"config"`
	Collection CollectionState `json:"collection"`
	Session    session.View    `json:"session"`
	Dialog     confirm.Dialog  `json:"dialog"`
	Table      table.View      `json:"table"`
}

// CollectionState is the serializable part of a collection snapshot.
type CollectionState struct {
	Count   int    `json:"count"`
	Version uint64 `json:"version"`
	Stale   bool   `json:"stale"`
	Loading bool   `json:"loading"`
	Fetched bool   `json:"fetched"`
	Err     string `json:"error,omitempty"`
}

// State returns the current state of every component.
func (a *App) State() State {
	snap := a.Collection.Snapshot()
	cs := CollectionState{
		Count:   len(snap.Records),
		Version: snap.Version,
		Stale:   snap.Stale,
		Loading: snap.Loading,
		Fetched: snap.Fetched,
	}
	if snap.Err != nil {
		cs.Err = snap.Err.Error()
	}
	return State{
		Config:     a.Config,
		Collection: cs,
		Session:    a.Session.View(),
		Dialog:     a.Gate.Dialog(),
		Table:      a.Table.View(),
	}
}
