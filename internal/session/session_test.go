package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manvel7/Antd-small-test/internal/user"
	"github.com/manvel7/Antd-small-test/internal/validate"
)

// fakeMutator records calls. When gate is non-nil each call blocks on it.
type fakeMutator struct {
	mu      sync.Mutex
	creates []user.Input
	updates map[string]user.Input
	err     error
	gate    chan struct{}
	started chan struct{}
}

func (f *fakeMutator) wait() {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
}

func (f *fakeMutator) Create(ctx context.Context, in user.Input) (user.Record, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return user.Record{}, f.err
	}
	f.creates = append(f.creates, in)
	return user.Record{ID: "new"}.WithInput(in), nil
}

func (f *fakeMutator) Update(ctx context.Context, id string, in user.Input) (user.Record, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return user.Record{}, f.err
	}
	if f.updates == nil {
		f.updates = map[string]user.Input{}
	}
	f.updates[id] = in
	return user.Record{ID: id}.WithInput(in), nil
}

func (f *fakeMutator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates) + len(f.updates)
}

func newTestSession(m Mutator) *Session {
	return New(m, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

var anna = user.Record{ID: "u-1", Name: "Anna", Age: 30, Phone: "+37412345678", Country: "AM"}

func fill(t *testing.T, s *Session, d user.Draft) {
	t.Helper()
	for _, f := range user.Fields {
		require.NoError(t, s.SetField(f, d.Get(f)))
	}
}

func TestNew_IsClosed(t *testing.T) {
	s := newTestSession(&fakeMutator{})

	v := s.View()
	assert.False(t, v.IsOpen)
	assert.Equal(t, ModeClosed, v.Mode)
	assert.False(t, v.CanSubmit)
}

func TestOpenCreate(t *testing.T) {
	s := newTestSession(&fakeMutator{})

	require.NoError(t, s.OpenCreate())
	v := s.View()
	assert.True(t, v.IsOpen)
	assert.Equal(t, ModeCreating, v.Mode)
	assert.Equal(t, TitleCreate, v.Title)
	assert.Equal(t, user.Draft{}, v.Draft)
	assert.Nil(t, v.Editing)
	assert.False(t, v.Validity.Valid)
	assert.False(t, v.CanSubmit)
}

func TestOpenEdit_SeedsDraft(t *testing.T) {
	s := newTestSession(&fakeMutator{})

	require.NoError(t, s.OpenEdit(anna))
	v := s.View()
	assert.Equal(t, ModeEditing, v.Mode)
	assert.Equal(t, TitleEdit, v.Title)
	assert.Equal(t, user.DraftFrom(anna), v.Draft)
	require.NotNil(t, v.Editing)
	assert.Equal(t, anna, *v.Editing)
	assert.True(t, v.CanSubmit)
}

func TestOpen_WhileOpenFails(t *testing.T) {
	s := newTestSession(&fakeMutator{})
	require.NoError(t, s.OpenCreate())

	assert.ErrorIs(t, s.OpenCreate(), ErrSessionOpen)
	assert.ErrorIs(t, s.OpenEdit(anna), ErrSessionOpen)
	assert.Equal(t, ModeCreating, s.View().Mode)
}

func TestClosedSessionRefusesEdits(t *testing.T) {
	s := newTestSession(&fakeMutator{})

	assert.ErrorIs(t, s.SetField(user.FieldName, "x"), ErrSessionClosed)
	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSetField_Revalidates(t *testing.T) {
	s := newTestSession(&fakeMutator{})
	require.NoError(t, s.OpenCreate())

	require.NoError(t, s.SetField(user.FieldAge, "abc"))
	assert.Equal(t, validate.MsgAgeNumber, s.View().Validity.Reason(user.FieldAge))

	require.NoError(t, s.SetField(user.FieldAge, "42"))
	assert.True(t, s.View().Validity.Fields[user.FieldAge].Valid)

	assert.Error(t, s.SetField(user.Field("email"), "x"))
}

func TestCancel_ResetsDraft(t *testing.T) {
	s := newTestSession(&fakeMutator{})
	require.NoError(t, s.OpenEdit(anna))
	require.NoError(t, s.SetField(user.FieldName, "changed"))

	require.NoError(t, s.Cancel())
	v := s.View()
	assert.False(t, v.IsOpen)
	assert.Equal(t, user.Draft{}, v.Draft)
	assert.Nil(t, v.Editing)

	// A closed session can be cancelled again.
	require.NoError(t, s.Cancel())
	require.NoError(t, s.OpenCreate())
	assert.Equal(t, user.Draft{}, s.View().Draft)
}

func TestSubmit_InvalidDraftMakesNoRequest(t *testing.T) {
	m := &fakeMutator{}
	s := newTestSession(m)
	require.NoError(t, s.OpenCreate())
	require.NoError(t, s.SetField(user.FieldName, "Anna"))

	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInvalidDraft)

	res, ok := IsInvalidDraft(err)
	require.True(t, ok)
	assert.Equal(t, validate.MsgAgeRequired, res.Reason(user.FieldAge))

	assert.Zero(t, m.calls())
	v := s.View()
	assert.True(t, v.IsOpen)
	assert.Equal(t, "Anna", v.Draft.Name)
	assert.ErrorIs(t, v.Err, ErrInvalidDraft)
	assert.False(t, v.ActionLoading)
}

func TestSubmit_CreateClosesSession(t *testing.T) {
	m := &fakeMutator{}
	s := newTestSession(m)
	require.NoError(t, s.OpenCreate())
	fill(t, s, user.Draft{Name: " Anna ", Age: "30", Phone: "+374 12 345 678", Country: "am"})

	rec, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", rec.ID)
	assert.Equal(t, []user.Input{{Name: "Anna", Age: 30, Phone: "+374 12 345 678", Country: "AM"}}, m.creates)

	v := s.View()
	assert.False(t, v.IsOpen)
	assert.False(t, v.ActionLoading)
	assert.NoError(t, v.Err)
}

func TestSubmit_EditUpdatesByID(t *testing.T) {
	m := &fakeMutator{}
	s := newTestSession(m)
	require.NoError(t, s.OpenEdit(anna))
	require.NoError(t, s.SetField(user.FieldAge, "31"))

	rec, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, anna.ID, rec.ID)
	assert.Equal(t, 31, m.updates[anna.ID].Age)
	assert.Empty(t, m.creates)
	assert.False(t, s.View().IsOpen)
}

func TestSubmit_FailureKeepsDraft(t *testing.T) {
	boom := errors.New("boom")
	m := &fakeMutator{err: boom}
	s := newTestSession(m)
	require.NoError(t, s.OpenEdit(anna))
	require.NoError(t, s.SetField(user.FieldName, "Anna Smith"))

	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, boom)

	v := s.View()
	assert.True(t, v.IsOpen)
	assert.Equal(t, ModeEditing, v.Mode)
	assert.Equal(t, "Anna Smith", v.Draft.Name)
	assert.False(t, v.ActionLoading)
	assert.ErrorIs(t, v.Err, boom)

	// Retrying after the failure works and clears the error.
	m.mu.Lock()
	m.err = nil
	m.mu.Unlock()
	_, err = s.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, s.View().IsOpen)
}

func TestSubmit_InFlightRefusesOtherActions(t *testing.T) {
	m := &fakeMutator{gate: make(chan struct{}), started: make(chan struct{}, 1)}
	s := newTestSession(m)
	require.NoError(t, s.OpenEdit(anna))

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background())
		done <- err
	}()

	select {
	case <-m.started:
	case <-time.After(time.Second):
		t.Fatal("mutation never started")
	}

	v := s.View()
	assert.True(t, v.ActionLoading)
	assert.False(t, v.CanSubmit)
	assert.ErrorIs(t, s.Cancel(), ErrActionInFlight)
	assert.ErrorIs(t, s.SetField(user.FieldName, "x"), ErrActionInFlight)
	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrActionInFlight)

	close(m.gate)
	require.NoError(t, <-done)
	assert.False(t, s.View().ActionLoading)
	assert.Equal(t, 1, m.calls())
}

func TestEditSnapshotIsACopy(t *testing.T) {
	s := newTestSession(&fakeMutator{})
	r := anna
	require.NoError(t, s.OpenEdit(r))

	r.Name = "mutated"
	assert.Equal(t, "Anna", s.View().Editing.Name)
}

// Every reachable state satisfies: closed implies no draft, no editing
// snapshot and no action in flight.
func TestSessionInvariant(t *testing.T) {
	m := &fakeMutator{}
	s := newTestSession(m)
	check := func() {
		t.Helper()
		v := s.View()
		if !v.IsOpen {
			assert.Equal(t, ModeClosed, v.Mode)
			assert.Nil(t, v.Editing)
			assert.Equal(t, user.Draft{}, v.Draft)
			assert.False(t, v.ActionLoading)
		} else {
			assert.Equal(t, v.Mode == ModeEditing, v.Editing != nil)
		}
	}

	steps := []func(){
		func() { _ = s.OpenCreate() },
		func() { _ = s.SetField(user.FieldName, "Bob") },
		func() { _, _ = s.Submit(context.Background()) },
		func() { _ = s.Cancel() },
		func() { _ = s.OpenEdit(anna) },
		func() { _ = s.OpenCreate() },
		func() { _, _ = s.Submit(context.Background()) },
		func() { _ = s.Cancel() },
	}
	check()
	for _, step := range steps {
		step()
		check()
	}
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "closed", ModeClosed.String())
	assert.Equal(t, "creating", ModeCreating.String())
	assert.Equal(t, "editing", ModeEditing.String())

	b, err := ModeEditing.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "editing", string(b))
}
