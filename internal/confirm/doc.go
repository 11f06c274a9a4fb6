// Package confirm implements a single-slot asynchronous confirmation gate.
//
// A caller asks a question with Confirm (or Show, Warning, Info, Error) and
// blocks until the presenting side answers through Accept, Reject or
// Dismiss, or until ctx is done. Only one dialog is open at a time; a
// second request while one is open fails fast with ErrBusy.
//
// ConfirmAction keeps the dialog open in a loading state while the
// affirmative action runs. While loading, the dialog cannot be answered
// or dismissed and no new dialog can open.
package confirm
