package client

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manvel7/Antd-small-test/internal/server"
	"github.com/manvel7/Antd-small-test/internal/store"
	"github.com/manvel7/Antd-small-test/internal/user"
)

func newTestAPI(t *testing.T) (*Client, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:", store.WithIDGenerator(store.NewSequenceGenerator("u")))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := httptest.NewServer(server.New(st, server.WithLogger(logger)))
	t.Cleanup(ts.Close)

	return New(ts.URL+"/api", WithLogger(logger)), st
}

var anna = user.Input{Name: "Anna", Age: 30, Phone: "+37412345678", Country: "AM"}

func TestCRUDRoundTrip(t *testing.T) {
	c, _ := newTestAPI(t)
	ctx := context.Background()

	users, err := c.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	created, err := c.Create(ctx, anna)
	require.NoError(t, err)
	assert.Equal(t, "u-1", created.ID)
	assert.Equal(t, anna, created.Input())

	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	changed := anna
	changed.Age = 31
	updated, err := c.Update(ctx, created.ID, changed)
	require.NoError(t, err)
	assert.Equal(t, created.WithInput(changed), updated)

	name := "Anna Smith"
	patched, err := c.Patch(ctx, created.ID, user.Patch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Anna Smith", patched.Name)
	assert.Equal(t, 31, patched.Age)

	require.NoError(t, c.Delete(ctx, created.ID))

	users, err = c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestListPageAndSearch(t *testing.T) {
	c, st := newTestAPI(t)
	ctx := context.Background()
	for _, name := range []string{"Anna", "Bob", "Carl"} {
		in := anna
		in.Name = name
		_, err := st.Create(ctx, in)
		require.NoError(t, err)
	}

	page, p, err := c.ListPage(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page, 2)
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, 2, p.TotalPages)

	found, err := c.Search(ctx, "car")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Carl", found[0].Name)
}

func TestAPIError_NotFound(t *testing.T) {
	c, _ := newTestAPI(t)

	err := c.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, http.StatusNotFound, Status(err))

	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "not_found", ae.Code)
	assert.Equal(t, "User not found", ae.Message)
}

func TestAPIError_ValidationFields(t *testing.T) {
	c, _ := newTestAPI(t)

	bad := anna
	bad.Name = "  "
	_, err := c.Create(context.Background(), bad)

	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusUnprocessableEntity, ae.Status)
	require.Len(t, ae.Fields, 1)
	assert.Equal(t, "name", ae.Fields[0].Field)
}

func TestAPIError_NonJSONBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := New(ts.URL).List(context.Background())

	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "HTTP 502: Bad Gateway", ae.Message)
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	_, err := New(ts.URL, WithTimeout(20*time.Millisecond)).List(context.Background())
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	assert.Equal(t, http.StatusRequestTimeout, Status(err))
	assert.Contains(t, err.Error(), MessageTimeout)
}

func TestNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := New(url).List(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
	assert.Equal(t, StatusNetwork, Status(err))
}

func TestCancelledContextIsNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(ts.URL).List(ctx)
	assert.True(t, IsNetworkError(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHeaders(t *testing.T) {
	var got http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{"data":[],"success":true}`))
	}))
	defer ts.Close()

	c := New(ts.URL, WithHeader("X-Env", "test"))
	_, err := c.List(ContextWithHeader(context.Background(), "Accept", "text/plain"))
	require.NoError(t, err)

	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "text/plain", got.Get("Accept"))
	assert.Equal(t, "test", got.Get("X-Env"))

	// Per-call headers do not leak into later requests.
	_, err = c.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "application/json", got.Get("Accept"))
}

func TestStatus_ConflictUnwrapsToAPIError(t *testing.T) {
	err := &ConflictError{ID: "u-1", Err: &APIError{Status: http.StatusNotFound, Message: "User not found"}}

	assert.True(t, IsConflict(err))
	assert.True(t, IsNotFound(err))
	assert.Equal(t, http.StatusNotFound, Status(err))
	assert.Equal(t, -1, Status(assert.AnError))
}
