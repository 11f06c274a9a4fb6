// Package collection mirrors the remote user list and keeps it honest.
//
// The mirror holds the records of the last successful fetch, patched by
// the responses of successful mutations. Each successful mutation bumps a
// version counter and marks the list stale, so the next Load re-fetches
// from the server instead of trusting local patches. A failed call never
// touches the records.
//
// Refresh keeps the current records visible while a fetch is in flight
// (stale-while-revalidate); Snapshot.Loading tells renderers a fetch is
// running.
package collection
