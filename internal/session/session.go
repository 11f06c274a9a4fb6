package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/manvel7/Antd-small-test/internal/user"
	"github.com/manvel7/Antd-small-test/internal/validate"
)

// Mode is the session state.
type Mode int

const (
	ModeClosed Mode = iota
	ModeCreating
	ModeEditing
)

func (m Mode) String() string {
	switch m {
	case ModeCreating:
		return "creating"
	case ModeEditing:
		return "editing"
	default:
		return "closed"
	}
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Form titles.
const (
	TitleCreate = "Create User"
	TitleEdit   = "Edit User"
)

// Mutator performs the remote write. *collection.Collection implements it.
type Mutator interface {
	Create(ctx context.Context, in user.Input) (user.Record, error)
	Update(ctx context.Context, id string, in user.Input) (user.Record, error)
}

// View is the render state of the session.
type View struct {
	IsOpen        bool            `json:"is_open"`
	Mode          Mode            `json:"mode"`
	Title         string          `json:"title,omitempty"`
	Editing       *user.Record    `json:"editing,omitempty"`
	Draft         user.Draft      `json:"draft"`
	Validity      validate.Result `json:"validity"`
	ActionLoading bool            `json:"action_loading"`
	CanSubmit     bool            `json:"can_submit"`
	Err           error           `json:"-"`
}

// Session is the edit session state machine. Safe for concurrent use;
// the lock is not held during the mutation.
type Session struct {
	mut    Mutator
	logger *slog.Logger

	mu            sync.Mutex
	mode          Mode
	editing       user.Record
	draft         user.Draft
	validity      validate.Result
	actionLoading bool
	err           error
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// New creates a closed session that writes through mut.
func New(mut Mutator, opts ...Option) *Session {
	s := &Session{mut: mut, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenCreate moves Closed to Creating with an empty draft.
func (s *Session) OpenCreate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != ModeClosed {
		return ErrSessionOpen
	}
	s.mode = ModeCreating
	s.setDraftLocked(user.Draft{})
	s.logger.Debug("session opened", "mode", s.mode)
	return nil
}

// OpenEdit moves Closed to Editing(r) with the draft seeded from r.
// The session keeps its own copy of r.
func (s *Session) OpenEdit(r user.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != ModeClosed {
		return ErrSessionOpen
	}
	s.mode = ModeEditing
	s.editing = r
	s.setDraftLocked(user.DraftFrom(r))
	s.logger.Debug("session opened", "mode", s.mode, "id", r.ID)
	return nil
}

// SetField changes one draft field and revalidates the draft.
func (s *Session) SetField(f user.Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == ModeClosed {
		return ErrSessionClosed
	}
	if s.actionLoading {
		return ErrActionInFlight
	}
	d, err := s.draft.Set(f, value)
	if err != nil {
		return err
	}
	s.setDraftLocked(d)
	return nil
}

// Cancel closes the session and discards the draft. Cancelling a closed
// session does nothing.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.actionLoading {
		return ErrActionInFlight
	}
	if s.mode != ModeClosed {
		s.logger.Debug("session cancelled", "mode", s.mode)
	}
	s.resetLocked()
	return nil
}

// Submit validates the draft and, if valid, creates or updates the record.
// On success the session closes and the stored record is returned. On
// failure the session stays open with its draft and View.Err set.
func (s *Session) Submit(ctx context.Context) (user.Record, error) {
	mode, id, in, err := s.begin()
	if err != nil {
		return user.Record{}, err
	}
	defer s.end()

	var rec user.Record
	switch mode {
	case ModeCreating:
		rec, err = s.mut.Create(ctx, in)
	case ModeEditing:
		rec, err = s.mut.Update(ctx, id, in)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.err = err
		s.logger.Error("submit failed", "mode", mode, "id", id, "error", err)
		return user.Record{}, fmt.Errorf("submit %s: %w", mode, err)
	}
	s.logger.Info("submit succeeded", "mode", mode, "id", rec.ID)
	s.resetLocked()
	return rec, nil
}

// begin validates the draft and raises actionLoading.
func (s *Session) begin() (Mode, string, user.Input, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeClosed {
		return ModeClosed, "", user.Input{}, ErrSessionClosed
	}
	if s.actionLoading {
		return ModeClosed, "", user.Input{}, ErrActionInFlight
	}

	s.validity = validate.Validate(s.draft)
	if !s.validity.Valid {
		s.err = &ValidationError{Result: s.validity}
		return ModeClosed, "", user.Input{}, s.err
	}
	in, err := s.draft.Input()
	if err != nil {
		s.err = err
		return ModeClosed, "", user.Input{}, err
	}

	s.actionLoading = true
	s.err = nil
	return s.mode, s.editing.ID, in, nil
}

func (s *Session) end() {
	s.mu.Lock()
	s.actionLoading = false
	s.mu.Unlock()
}

// View returns the render state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		IsOpen:        s.mode != ModeClosed,
		Mode:          s.mode,
		Draft:         s.draft,
		Validity:      s.validity,
		ActionLoading: s.actionLoading,
		Err:           s.err,
	}
	switch s.mode {
	case ModeCreating:
		v.Title = TitleCreate
	case ModeEditing:
		v.Title = TitleEdit
		r := s.editing
		v.Editing = &r
	}
	v.CanSubmit = v.IsOpen && s.validity.Valid && !s.actionLoading
	return v
}

func (s *Session) setDraftLocked(d user.Draft) {
	s.draft = d
	s.validity = validate.Validate(d)
	s.err = nil
}

func (s *Session) resetLocked() {
	s.mode = ModeClosed
	s.editing = user.Record{}
	s.draft = user.Draft{}
	s.validity = validate.Result{}
	s.err = nil
}
