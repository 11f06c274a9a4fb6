package testutil

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manvel7/Antd-small-test/internal/client"
	"github.com/manvel7/Antd-small-test/internal/user"
)

func TestStartAPI(t *testing.T) {
	api, err := StartAPI()
	require.NoError(t, err)
	defer api.Close()

	c := client.New(api.BaseURL())
	rec, err := c.Create(context.Background(), user.Input{Name: "Anna", Age: 30, Phone: "+37412345678", Country: "AM"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", rec.ID)

	stored, err := api.Store.Get(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, rec, stored)
}

func TestFaultInjector_FailsQueuedRequestsInOrder(t *testing.T) {
	api, err := StartAPI()
	require.NoError(t, err)
	defer api.Close()
	c := client.New(api.BaseURL())
	ctx := context.Background()

	api.Faults.FailNext(http.StatusInternalServerError)
	api.Faults.FailNext(http.StatusServiceUnavailable)
	assert.Equal(t, 2, api.Faults.Pending())

	_, err = c.List(ctx)
	assert.Equal(t, http.StatusInternalServerError, client.Status(err))

	_, err = c.List(ctx)
	assert.Equal(t, http.StatusServiceUnavailable, client.Status(err))

	_, err = c.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, api.Faults.Pending())
	assert.Equal(t, 3, api.Faults.Served())
}
