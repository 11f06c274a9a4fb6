package collection

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/manvel7/Antd-small-test/internal/client"
	"github.com/manvel7/Antd-small-test/internal/user"
)

// Repository is the remote store. *client.Client implements it.
type Repository interface {
	List(ctx context.Context) ([]user.Record, error)
	Create(ctx context.Context, in user.Input) (user.Record, error)
	Update(ctx context.Context, id string, in user.Input) (user.Record, error)
	Delete(ctx context.Context, id string) error
}

// Snapshot is a consistent copy of the collection state.
type Snapshot struct {
	// Records in server order, unique by ID.
	Records []user.Record

	// Version counts successful mutations.
	Version uint64

	// Stale is true until the first fetch and after every mutation.
	Stale bool

	// Loading is true while a fetch is in flight.
	Loading bool

	// Fetched is true once any fetch has succeeded.
	Fetched bool

	// Err is the error of the last fetch, cleared by a successful one.
	Err error
}

// Collection is the local mirror of the remote users. Safe for
// concurrent use; no lock is held across a repository call.
type Collection struct {
	repo   Repository
	logger *slog.Logger

	mu       sync.Mutex
	records  []user.Record
	version  uint64
	stale    bool
	inflight int
	fetched  bool
	err      error
}

// Option configures a Collection.
type Option func(*Collection)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Collection) {
		c.logger = l
	}
}

// New creates an empty, stale collection over repo.
func New(repo Repository, opts ...Option) *Collection {
	c := &Collection{
		repo:    repo,
		logger:  slog.Default(),
		records: []user.Record{},
		stale:   true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the current state.
func (c *Collection) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Collection) snapshotLocked() Snapshot {
	return Snapshot{
		Records: slices.Clone(c.records),
		Version: c.version,
		Stale:   c.stale,
		Loading: c.inflight > 0,
		Fetched: c.fetched,
		Err:     c.err,
	}
}

// Find returns the mirrored record with the given ID.
func (c *Collection) Find(id string) (user.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(id)
	if i < 0 {
		return user.Record{}, false
	}
	return c.records[i], true
}

// Load returns the current snapshot, fetching first if the list is stale.
func (c *Collection) Load(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	stale := c.stale
	c.mu.Unlock()

	if stale {
		if err := c.Refresh(ctx); err != nil {
			return c.Snapshot(), err
		}
	}
	return c.Snapshot(), nil
}

// Refresh fetches the list and replaces the records. The old records stay
// visible until the fetch succeeds. If a mutation lands while the fetch is
// in flight, the fetched list is discarded and the collection stays stale.
func (c *Collection) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.inflight++
	startVersion := c.version
	c.mu.Unlock()

	records, err := c.repo.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--

	if err != nil {
		c.err = err
		c.logger.Error("fetch users failed", "error", err, "status", client.Status(err))
		return fmt.Errorf("fetch users: %w", err)
	}
	if c.version != startVersion {
		c.logger.Debug("discarding fetch overtaken by mutation",
			"fetched_version", startVersion, "version", c.version)
		return nil
	}

	c.records = dedupe(records)
	c.stale = false
	c.fetched = true
	c.err = nil
	c.logger.Debug("users fetched", "count", len(c.records), "version", c.version)
	return nil
}

// Create stores in remotely and appends the returned record.
func (c *Collection) Create(ctx context.Context, in user.Input) (user.Record, error) {
	rec, err := c.repo.Create(ctx, in)
	if err != nil {
		c.logger.Error("create user failed", "error", err, "status", client.Status(err))
		return user.Record{}, fmt.Errorf("create user: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexLocked(rec.ID); i >= 0 {
		c.records[i] = rec
	} else {
		c.records = append(c.records, rec)
	}
	c.invalidateLocked()
	c.logger.Info("user created", "id", rec.ID, "version", c.version)
	return rec, nil
}

// Update replaces user id remotely and swaps in the returned record.
// A 404 from the server yields a ConflictError.
func (c *Collection) Update(ctx context.Context, id string, in user.Input) (user.Record, error) {
	rec, err := c.repo.Update(ctx, id, in)
	if err != nil {
		return user.Record{}, c.mutationError("update", id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexLocked(id); i >= 0 {
		c.records[i] = rec
	} else {
		c.records = append(c.records, rec)
	}
	c.invalidateLocked()
	c.logger.Info("user updated", "id", id, "version", c.version)
	return rec, nil
}

// Delete removes user id remotely and then from the mirror.
// A 404 from the server yields a ConflictError.
func (c *Collection) Delete(ctx context.Context, id string) error {
	if err := c.repo.Delete(ctx, id); err != nil {
		return c.mutationError("delete", id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexLocked(id); i >= 0 {
		c.records = slices.Delete(c.records, i, i+1)
	}
	c.invalidateLocked()
	c.logger.Info("user deleted", "id", id, "version", c.version)
	return nil
}

// mutationError wraps a failed update or delete. A 404 means the mirror
// is out of date, so the list is marked stale but the records are kept.
func (c *Collection) mutationError(op, id string, err error) error {
	c.logger.Error(op+" user failed", "id", id, "error", err, "status", client.Status(err))
	if client.IsNotFound(err) {
		c.mu.Lock()
		c.stale = true
		c.mu.Unlock()
		err = &client.ConflictError{ID: id, Err: err}
	}
	return fmt.Errorf("%s user %s: %w", op, id, err)
}

func (c *Collection) invalidateLocked() {
	c.version++
	c.stale = true
}

func (c *Collection) indexLocked(id string) int {
	return slices.IndexFunc(c.records, func(r user.Record) bool { return r.ID == id })
}

// dedupe drops later records whose ID was already seen.
func dedupe(records []user.Record) []user.Record {
	out := make([]user.Record, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out
}
