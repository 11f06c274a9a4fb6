// Package user provides the record and draft types shared by every layer.
//
// This package contains type definitions and small value helpers only. All
// other internal packages import user; user imports nothing internal.
//
// Key design constraints:
//   - Record.ID is assigned by the remote store and never changes afterwards
//   - Draft holds raw form input; Age stays a string so "" means "no value"
//   - Records are passed by value so an edit snapshot never aliases the collection
package user
