package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/manvel7/Antd-small-test/internal/testutil"
	"github.com/manvel7/Antd-small-test/internal/user"
)

// newTestRoot builds a root command that reads env from the given map
// instead of the process environment and writes stdout to out.
func newTestRoot(out io.Writer, env map[string]string) *cobra.Command {
	opts := &RootOptions{
		Getenv: func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		},
	}
	cmd := newRootCommand(opts)
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	return cmd
}

// startAPI starts an API seeded with users u-1, u-2, ... in order.
func startAPI(t *testing.T, seed ...user.Input) *testutil.API {
	t.Helper()
	api, err := testutil.StartAPI()
	require.NoError(t, err)
	t.Cleanup(func() { _ = api.Close() })

	for _, in := range seed {
		_, err := api.Store.Create(context.Background(), in)
		require.NoError(t, err)
	}
	return api
}

// runCLI executes the root command against api and returns stdout.
func runCLI(t *testing.T, api *testutil.API, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := newTestRoot(buf, nil)
	cmd.SetIn(bytes.NewBufferString(stdin))
	cmd.SetArgs(append(args, "--base-url", api.BaseURL()))
	err := cmd.Execute()
	return buf.String(), err
}

func decodeResponse(t *testing.T, buf *bytes.Buffer) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	return resp
}

var (
	anna  = user.Input{Name: "Anna", Age: 25, Phone: "+37491234567", Country: "AM"}
	boris = user.Input{Name: "Boris", Age: 40, Phone: "+14155550123", Country: "US"}
)
