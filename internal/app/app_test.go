package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manvel7/Antd-small-test/internal/client"
	"github.com/manvel7/Antd-small-test/internal/config"
	"github.com/manvel7/Antd-small-test/internal/confirm"
	"github.com/manvel7/Antd-small-test/internal/session"
	"github.com/manvel7/Antd-small-test/internal/store"
	"github.com/manvel7/Antd-small-test/internal/testutil"
	"github.com/manvel7/Antd-small-test/internal/user"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type env struct {
	app    *App
	api    *testutil.API
	store  *store.Store
	answer atomic.Value // func(*confirm.Gate) error
}

func newEnv(t *testing.T) *env {
	t.Helper()
	api, err := testutil.StartAPI()
	require.NoError(t, err)
	t.Cleanup(func() { api.Close() })

	e := &env{api: api, store: api.Store}
	cfg := config.Default()
	cfg.APIBaseURL = api.BaseURL()

	e.answer.Store((*confirm.Gate).Accept)
	e.app, err = New(cfg,
		WithLogger(discard),
		WithPresenter(func(confirm.Dialog) {
			fn := e.answer.Load().(func(*confirm.Gate) error)
			_ = fn(e.app.Gate)
		}),
	)
	require.NoError(t, err)
	return e
}

func (e *env) seed(t *testing.T, names ...string) []user.Record {
	t.Helper()
	var out []user.Record
	for _, n := range names {
		r, err := e.store.Create(context.Background(), user.Input{Name: n, Age: 30, Phone: "+37412345678", Country: "AM"})
		require.NoError(t, err)
		out = append(out, r)
	}
	return out
}

func fillValid(t *testing.T, a *App, name string) {
	t.Helper()
	require.NoError(t, a.SetField(user.FieldName, name))
	require.NoError(t, a.SetField(user.FieldAge, "28"))
	require.NoError(t, a.SetField(user.FieldPhone, "+1 202 555 0123"))
	require.NoError(t, a.SetField(user.FieldCountry, "US"))
}

func TestNew_UsesClientByDefault(t *testing.T) {
	e := newEnv(t)
	require.NotNil(t, e.app.Client)
	assert.Equal(t, e.app.Config.APIBaseURL, e.app.Client.BaseURL())
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Environment = "qa"
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestNew_RepositoryOverride(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	a, err := New(config.Default(), WithRepository(st), WithLogger(discard))
	require.NoError(t, err)
	assert.Nil(t, a.Client)

	v, err := a.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, v.Rows)
}

func TestCreateRoundTrip(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.app.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, e.app.OpenCreate())
	fillValid(t, e.app, "Grace")
	rec, err := e.app.Submit(ctx)
	require.NoError(t, err)

	assert.False(t, e.app.Session.View().IsOpen)

	snap := e.app.Collection.Snapshot()
	assert.False(t, snap.Stale, "list re-fetched after mutation")
	require.Len(t, snap.Records, 1)
	assert.Equal(t, rec, snap.Records[0])
	assert.Equal(t, user.Input{Name: "Grace", Age: 28, Phone: "+1 202 555 0123", Country: "US"}, rec.Input())

	stored, err := e.store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, stored)
}

func TestEditRoundTrip(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	recs := e.seed(t, "Anna")
	_, err := e.app.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, e.app.OpenEdit(recs[0].ID))
	require.NoError(t, e.app.SetField(user.FieldAge, "31"))
	_, err = e.app.Submit(ctx)
	require.NoError(t, err)

	v := e.app.Table.View()
	require.Len(t, v.Rows, 1)
	assert.Equal(t, 31, v.Rows[0].Age)
}

func TestSubmitFailure_IsAtomic(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.seed(t, "Anna")
	_, err := e.app.Load(ctx)
	require.NoError(t, err)
	before := e.app.Collection.Snapshot()

	require.NoError(t, e.app.OpenCreate())
	fillValid(t, e.app, "Grace")
	e.api.Faults.FailNext(http.StatusInternalServerError)

	_, err = e.app.Submit(ctx)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, client.Status(err))

	after := e.app.Collection.Snapshot()
	assert.Equal(t, before.Records, after.Records)
	assert.Equal(t, before.Version, after.Version)

	sv := e.app.Session.View()
	assert.True(t, sv.IsOpen)
	assert.Equal(t, "Grace", sv.Draft.Name)
	assert.False(t, sv.ActionLoading)
	assert.Error(t, sv.Err)
}

func TestInvalidDraftNeverHitsNetwork(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.app.OpenCreate())
	require.NoError(t, e.app.SetField(user.FieldPhone, "12345"))
	served := e.api.Faults.Served()

	_, err := e.app.Submit(ctx)
	assert.ErrorIs(t, err, session.ErrInvalidDraft)
	assert.Equal(t, served, e.api.Faults.Served())
}

func TestDelete_RequiresConfirmation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	recs := e.seed(t, "Anna", "Bob")
	_, err := e.app.Load(ctx)
	require.NoError(t, err)

	e.answer.Store((*confirm.Gate).Reject)
	ok, err := e.app.Delete(ctx, recs[0].ID)
	require.NoError(t, err)
	assert.False(t, ok)
	all, err := e.store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	e.answer.Store((*confirm.Gate).Accept)
	ok, err = e.app.Delete(ctx, recs[0].ID)
	require.NoError(t, err)
	assert.True(t, ok)

	all, err = e.store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []user.Record{recs[1]}, all)
	assert.Len(t, e.app.Table.View().Rows, 1)
}

func TestDelete_RemovedElsewhereIsConflict(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	recs := e.seed(t, "Anna")
	_, err := e.app.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, e.store.Delete(ctx, recs[0].ID))

	ok, err := e.app.Delete(ctx, recs[0].ID)
	assert.True(t, ok)
	assert.True(t, client.IsConflict(err))
	assert.Error(t, e.app.Table.View().Err)

	v, err := e.app.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, v.Rows)
}

func TestRefreshFailure_KeepsRows(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.seed(t, "Anna")
	_, err := e.app.Load(ctx)
	require.NoError(t, err)

	e.api.Faults.FailNext(http.StatusServiceUnavailable)
	v, err := e.app.Refresh(ctx)
	require.Error(t, err)
	assert.Len(t, v.Rows, 1)
	assert.Error(t, v.Err)
}

func TestState(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.seed(t, "Anna")
	_, err := e.app.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, e.app.OpenCreate())

	s := e.app.State()
	assert.Equal(t, 1, s.Collection.Count)
	assert.True(t, s.Collection.Fetched)
	assert.Equal(t, session.ModeCreating, s.Session.Mode)
	assert.False(t, s.Dialog.Open)
	assert.Len(t, s.Table.Rows, 1)
}
