package harness

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manvel7/Antd-small-test/internal/client"
	"github.com/manvel7/Antd-small-test/internal/confirm"
	"github.com/manvel7/Antd-small-test/internal/session"
	"github.com/manvel7/Antd-small-test/internal/table"
	"github.com/manvel7/Antd-small-test/internal/validate"
)

func TestScenarios_Golden(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		scenario, err := LoadScenario(path)
		require.NoError(t, err, path)

		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/remote_failures.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, first.TraceText(scenario.Name), second.TraceText(scenario.Name))
}

func TestRun_ExpectMismatch(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: mismatch
description: Expects the wrong mode and rows.
seed:
  - {name: Anna, age: 25, phone: "+37491234567", country: AM}
flow:
  - action: refresh
    expect:
      rows: []
  - action: open_create
    expect:
      mode: editing
      error: session_open
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], `flow[0] refresh: expected rows [], got [Anna]`)
	assert.Contains(t, result.Errors[1], `flow[1] open_create: expected mode "editing", got "creating"`)
	assert.Contains(t, result.Errors[2], `expected error "session_open", got "none"`)
}

func TestRun_AssertionFailure(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: assertion_failure
description: Asserts a user that was never created.
flow:
  - action: refresh
assertions:
  - type: final_state
    rows: [Ghost]
  - type: trace_count
    action: refresh
    count: 2
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], `Expected: store rows ["Ghost"]`)
	assert.Contains(t, result.Errors[0], `Actual: store rows []`)
	assert.Contains(t, result.Errors[1], "2 occurrences of refresh")
}

func TestRun_EmptyTable(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: empty
description: Lists an empty store.
flow:
  - action: refresh
    expect:
      rows: []
assertions:
  - type: final_state
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "scenario: empty\n1 refresh => ok mode=closed rows=[]\nfinal: []\n",
		string(result.TraceText("empty")))
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "description: d\nflow:\n  - action: refresh\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: n\nflow:\n  - action: refresh\n",
			wantErr: "description is required",
		},
		{
			name:    "empty flow",
			yaml:    "name: n\ndescription: d\n",
			wantErr: "flow list is required",
		},
		{
			name:    "open_edit without name",
			yaml:    "name: n\ndescription: d\nflow:\n  - action: open_edit\n",
			wantErr: "name is required for open_edit",
		},
		{
			name:    "set unknown field",
			yaml:    "name: n\ndescription: d\nflow:\n  - action: set\n    field: email\n",
			wantErr: `unknown field "email"`,
		},
		{
			name:    "delete bad answer",
			yaml:    "name: n\ndescription: d\nflow:\n  - action: delete\n    name: Anna\n    answer: maybe\n",
			wantErr: "answer must be accept, reject or dismiss",
		},
		{
			name:    "fail_next bad status",
			yaml:    "name: n\ndescription: d\nflow:\n  - action: fail_next\n    status: 200\n",
			wantErr: "status must be 4xx or 5xx",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: n\ndescription: d\nflow:\n  - action: refresh\nassertions:\n  - type: eventually\n",
			wantErr: `unknown assertion type "eventually"`,
		},
		{
			name:    "trace_order without actions",
			yaml:    "name: n\ndescription: d\nflow:\n  - action: refresh\nassertions:\n  - type: trace_order\n",
			wantErr: "actions list is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_InvalidFiles(t *testing.T) {
	_, err := LoadScenario("testdata/invalid/unknown_action.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown action "launch"`)

	_, err = LoadScenario("testdata/invalid/unknown_field.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expekt")

	_, err = LoadScenario("testdata/invalid/missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, KindNone},
		{&session.ValidationError{Result: validate.Result{}}, KindInvalidDraft},
		{session.ErrSessionOpen, KindSessionOpen},
		{session.ErrSessionClosed, KindSessionClosed},
		{session.ErrActionInFlight, KindActionInFlight},
		{fmt.Errorf("edit u-9: %w", table.ErrRowNotFound), KindRowNotFound},
		{confirm.ErrBusy, KindBusy},
		{fmt.Errorf("delete: %w", &client.ConflictError{ID: "u-1", Err: &client.APIError{Status: 404}}), KindConflict},
		{&client.TimeoutError{Method: "GET", URL: "http://x/users"}, KindTimeout},
		{&client.NetworkError{Method: "GET", URL: "http://x/users", Err: errors.New("refused")}, KindNetwork},
		{fmt.Errorf("create user: %w", &client.APIError{Status: 422}), "api_422"},
		{errors.New("boom"), KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorKind(tt.err))
		})
	}
}

func TestAssertTraceOrder(t *testing.T) {
	trace := []TraceEvent{
		{Seq: 1, Action: ActionRefresh},
		{Seq: 2, Action: ActionOpenCreate},
		{Seq: 3, Action: ActionSubmit},
	}

	assert.NoError(t, assertTraceOrder(trace, Assertion{Actions: []string{ActionRefresh, ActionSubmit}}))

	err := assertTraceOrder(trace, Assertion{Actions: []string{ActionSubmit, ActionRefresh}})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Actual, "submit (pos 3) should be before refresh (pos 1)")

	err = assertTraceOrder(trace, Assertion{Actions: []string{ActionDelete}})
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "missing action: delete", ae.Actual)
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	err := &AssertionError{
		Type:     AssertTraceContains,
		Expected: "action delete",
		Actual:   "not found in trace",
		Trace:    []TraceEvent{{Seq: 1, Action: ActionRefresh, Outcome: OutcomeOK, Mode: "closed"}},
	}
	assert.Equal(t, "Assertion failed: trace_contains\n"+
		"  Expected: action delete\n"+
		"  Actual: not found in trace\n"+
		"\nFull trace:\n"+
		"  1 refresh => ok mode=closed rows=[]\n", err.Error())
}
