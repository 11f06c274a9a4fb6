// Package harness runs scripted user-table scenarios end to end.
//
// A scenario drives the composed app (internal/app) against a real HTTP
// API backed by an in-memory store, one step at a time, and records a
// trace of what each step did and what the table looked like afterwards.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: create_then_delete
//	description: "A created user can be deleted after confirmation"
//	seed:
//	  - { name: Anna, age: 30, phone: "+37412345678", country: AM }
//	flow:
//	  - action: refresh
//	    expect: { rows: [Anna] }
//	  - action: open_create
//	  - action: set
//	    field: name
//	    value: Grace
//	  - action: submit
//	    expect: { error: invalid_draft, mode: creating }
//	  - action: delete
//	    name: Anna
//	    answer: accept
//	assertions:
//	  - type: final_state
//	    rows: []
//
// # Actions
//
//   - refresh: re-fetch the list
//   - open_create, open_edit{name}: open the form
//   - set{field, value}: change a form field
//   - submit, cancel: finish the form
//   - delete{name, answer}: delete a row, answering the confirmation with
//     accept, reject or dismiss
//   - fail_next{status}: make the next API request fail with status
//
// # Determinism
//
// Record IDs come from a sequence generator (u-1, u-2, ...), trace events
// are numbered by a logical clock, and errors are recorded by kind rather
// than message, so traces are byte-for-byte reproducible and can be
// compared against golden files.
package harness
