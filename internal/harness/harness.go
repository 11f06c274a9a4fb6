package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"sync/atomic"

	"github.com/manvel7/Antd-small-test/internal/app"
	"github.com/manvel7/Antd-small-test/internal/config"
	"github.com/manvel7/Antd-small-test/internal/confirm"
	"github.com/manvel7/Antd-small-test/internal/table"
	"github.com/manvel7/Antd-small-test/internal/testutil"
	"github.com/manvel7/Antd-small-test/internal/user"
)

// Harness executes one scenario.
type Harness struct {
	api    *testutil.API
	app    *app.App
	clock  *testutil.DeterministicClock
	logger *slog.Logger

	// answer is the reply the presenter gives the next confirmation.
	answer atomic.Value
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory store behind a real HTTP
// server, so the client, collection, session, gate and table all run
// exactly as they do in production.
//
// Execution flow:
// 1. Start the API and store the seed records
// 2. Build the app pointed at the API
// 3. Execute flow steps, checking expect clauses
// 4. Read the final store contents and check assertions
func Run(scenario *Scenario) (*Result, error) {
	api, err := testutil.StartAPI()
	if err != nil {
		return nil, err
	}
	defer api.Close()

	ctx := context.Background()
	for i, in := range scenario.Seed {
		if _, err := api.Store.Create(ctx, in); err != nil {
			return nil, fmt.Errorf("seed[%d]: %w", i, err)
		}
	}

	h := &Harness{
		api:    api,
		clock:  testutil.NewDeterministicClock(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in scenarios
	}
	h.answer.Store(AnswerDismiss)

	cfg := config.Default()
	cfg.APIBaseURL = api.BaseURL()
	cfg.Environment = "test"
	h.app, err = app.New(cfg, app.WithLogger(h.logger), app.WithPresenter(h.present))
	if err != nil {
		return nil, fmt.Errorf("build app: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Flow {
		h.executeStep(ctx, i, step, result)
	}

	final, err := api.Store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("read final state: %w", err)
	}
	for _, r := range final {
		result.FinalRows = append(result.FinalRows, r.Name)
	}

	for _, a := range scenario.Assertions {
		if err := evaluateAssertion(result, a); err != nil {
			result.AddError(err.Error())
		}
	}
	return result, nil
}

// present answers a confirmation dialog with the current scripted answer.
func (h *Harness) present(confirm.Dialog) {
	var err error
	switch h.answer.Load().(string) {
	case AnswerAccept:
		err = h.app.Gate.Accept()
	case AnswerReject:
		err = h.app.Gate.Reject()
	default:
		err = h.app.Gate.Dismiss()
	}
	if err != nil {
		h.logger.Warn("scripted answer refused", "error", err)
	}
}

func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) {
	var (
		err       error
		args      string
		confirmed *bool
	)

	switch step.Action {
	case ActionRefresh:
		_, err = h.app.Refresh(ctx)
	case ActionOpenCreate:
		err = h.app.OpenCreate()
	case ActionOpenEdit:
		args = "name=" + strconv.Quote(step.Name)
		err = h.withRow(step.Name, h.app.OpenEdit)
	case ActionSet:
		args = step.Field + "=" + strconv.Quote(step.Value)
		err = h.app.SetField(user.Field(step.Field), step.Value)
	case ActionSubmit:
		_, err = h.app.Submit(ctx)
	case ActionCancel:
		err = h.app.Cancel()
	case ActionDelete:
		args = fmt.Sprintf("name=%s answer=%s", strconv.Quote(step.Name), step.Answer)
		h.answer.Store(step.Answer)
		err = h.withRow(step.Name, func(id string) error {
			ok, err := h.app.Delete(ctx, id)
			confirmed = &ok
			return err
		})
	case ActionFailNext:
		args = "status=" + strconv.Itoa(step.Status)
		h.api.Faults.FailNext(step.Status)
	}

	outcome := OutcomeOK
	switch {
	case err != nil:
		outcome = "error:" + ErrorKind(err)
	case confirmed != nil && !*confirmed:
		outcome = OutcomeDeclined
	}

	sv := h.app.Session.View()
	event := TraceEvent{
		Seq:     h.clock.Next(),
		Action:  step.Action,
		Args:    args,
		Outcome: outcome,
		Mode:    sv.Mode.String(),
		Rows:    rowNames(h.app.Table.View()),
	}
	result.Trace = append(result.Trace, event)

	if step.Expect != nil {
		for _, msg := range checkExpect(step.Expect, event, err, confirmed, sv.Validity.Reason(user.Field(step.Expect.Field))) {
			result.AddError(fmt.Sprintf("flow[%d] %s: %s", index, step.Action, msg))
		}
	}
}

// withRow resolves a user name to its row ID and calls fn.
func (h *Harness) withRow(name string, fn func(id string) error) error {
	for _, r := range h.app.Collection.Snapshot().Records {
		if r.Name == name {
			return fn(r.ID)
		}
	}
	return fmt.Errorf("no row named %q: %w", name, table.ErrRowNotFound)
}

func rowNames(v table.View) []string {
	names := make([]string, 0, len(v.Rows))
	for _, r := range v.Rows {
		names = append(names, r.Name)
	}
	return names
}

func checkExpect(e *Expect, event TraceEvent, err error, confirmed *bool, fieldReason string) []string {
	var msgs []string
	if e.Mode != "" && e.Mode != event.Mode {
		msgs = append(msgs, fmt.Sprintf("expected mode %q, got %q", e.Mode, event.Mode))
	}
	if e.Error != "" {
		if got := ErrorKind(err); got != e.Error {
			msgs = append(msgs, fmt.Sprintf("expected error %q, got %q (%v)", e.Error, got, err))
		}
	}
	if e.Rows != nil && !slices.Equal(e.Rows, event.Rows) {
		msgs = append(msgs, fmt.Sprintf("expected rows %v, got %v", e.Rows, event.Rows))
	}
	if e.Confirmed != nil {
		if confirmed == nil {
			msgs = append(msgs, "expected a confirmation, none was asked")
		} else if *confirmed != *e.Confirmed {
			msgs = append(msgs, fmt.Sprintf("expected confirmed=%t, got %t", *e.Confirmed, *confirmed))
		}
	}
	if e.Field != "" && e.FieldError != fieldReason {
		msgs = append(msgs, fmt.Sprintf("expected %s error %q, got %q", e.Field, e.FieldError, fieldReason))
	}
	return msgs
}
