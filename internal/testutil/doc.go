// Package testutil holds deterministic helpers shared by tests and the
// scenario harness: a logical clock for trace numbering and an in-process
// users API with fault injection.
package testutil
