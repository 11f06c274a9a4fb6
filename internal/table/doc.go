// Package table projects the user collection into a paginated table and
// routes row actions: Edit opens the edit session, Delete asks the
// confirmation gate and then deletes through the collection.
package table
