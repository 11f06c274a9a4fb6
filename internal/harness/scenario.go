package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/manvel7/Antd-small-test/internal/user"
)

// Scenario is a scripted run of the user table.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Seed lists records stored before the flow starts. They get IDs
	// u-1, u-2, ... in order.
	Seed []user.Input `yaml:"seed,omitempty"`

	// Flow is the sequence of user actions.
	Flow []Step `yaml:"flow"`

	// Assertions are checked after the flow.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one user action.
type Step struct {
	// Action is one of the Action* constants.
	Action string `yaml:"action"`

	// Name selects a row by user name (open_edit, delete).
	Name string `yaml:"name,omitempty"`

	// Field and Value are the form edit (set).
	Field string `yaml:"field,omitempty"`
	Value string `yaml:"value,omitempty"`

	// Answer is the confirmation answer (delete): accept, reject or dismiss.
	Answer string `yaml:"answer,omitempty"`

	// Status is the injected failure status (fail_next).
	Status int `yaml:"status,omitempty"`

	// Expect is checked after the step.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes the state after a step. Empty fields are not checked.
type Expect struct {
	// Mode is the session mode: closed, creating or editing.
	Mode string `yaml:"mode,omitempty"`

	// Error is the error kind (see ErrorKind), or "none" for success.
	Error string `yaml:"error,omitempty"`

	// Rows are the user names shown on the current table page, in order.
	// An explicit empty list checks for an empty table.
	Rows []string `yaml:"rows"`

	// Confirmed is whether a delete was confirmed.
	Confirmed *bool `yaml:"confirmed,omitempty"`

	// FieldError is the validation reason expected on Field.
	Field      string `yaml:"field,omitempty"`
	FieldError string `yaml:"field_error,omitempty"`
}

// Step actions.
const (
	ActionRefresh    = "refresh"
	ActionOpenCreate = "open_create"
	ActionOpenEdit   = "open_edit"
	ActionSet        = "set"
	ActionSubmit     = "submit"
	ActionCancel     = "cancel"
	ActionDelete     = "delete"
	ActionFailNext   = "fail_next"
)

// Confirmation answers.
const (
	AnswerAccept  = "accept"
	AnswerReject  = "reject"
	AnswerDismiss = "dismiss"
)

// Assertion validates the trace or the final store contents.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Action is the step action (trace_contains, trace_count).
	Action string `yaml:"action,omitempty"`

	// Outcome optionally narrows trace_contains to events with this outcome.
	Outcome string `yaml:"outcome,omitempty"`

	// Count is the expected number of events (trace_count).
	Count int `yaml:"count,omitempty"`

	// Actions is the expected action order (trace_order).
	Actions []string `yaml:"actions,omitempty"`

	// Rows are the expected user names in the store (final_state).
	Rows []string `yaml:"rows,omitempty"`
}

// Assertion types.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(i int, step Step) error {
	switch step.Action {
	case ActionRefresh, ActionOpenCreate, ActionSubmit, ActionCancel:
	case ActionOpenEdit:
		if step.Name == "" {
			return fmt.Errorf("flow[%d]: name is required for open_edit", i)
		}
	case ActionSet:
		if _, ok := user.ParseField(step.Field); !ok {
			return fmt.Errorf("flow[%d]: unknown field %q", i, step.Field)
		}
	case ActionDelete:
		if step.Name == "" {
			return fmt.Errorf("flow[%d]: name is required for delete", i)
		}
		switch step.Answer {
		case AnswerAccept, AnswerReject, AnswerDismiss:
		default:
			return fmt.Errorf("flow[%d]: answer must be accept, reject or dismiss, got %q", i, step.Answer)
		}
	case ActionFailNext:
		if step.Status < 400 || step.Status > 599 {
			return fmt.Errorf("flow[%d]: status must be 4xx or 5xx, got %d", i, step.Status)
		}
	case "":
		return fmt.Errorf("flow[%d]: action is required", i)
	default:
		return fmt.Errorf("flow[%d]: unknown action %q", i, step.Action)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
