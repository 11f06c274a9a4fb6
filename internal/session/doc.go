// Package session implements the row edit session: the form state machine
// behind "create user" and "edit user".
//
// States:
//
//	Closed --OpenCreate--> Creating --Submit ok / Cancel--> Closed
//	Closed --OpenEdit(r)--> Editing(r) --Submit ok / Cancel--> Closed
//
// Submit validates the draft synchronously and only then issues the
// mutation. While the mutation is in flight ActionLoading is set, and
// Cancel, SetField and a second Submit are refused. A failed submit
// leaves the session open with the draft intact and the error in View.Err.
package session
