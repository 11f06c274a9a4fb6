// Package client is the HTTP transport for the users API.
//
// Every call is a single round trip: no retries, no caching. Responses are
// unwrapped from the {data, message, success} envelope, and failures come
// back as one of the typed errors in errors.go:
//
//   - [NetworkError]: the request never produced a response (status 0)
//   - [TimeoutError]: the per-request deadline fired (status 408)
//   - [APIError]: the server answered with a non-2xx status
//
// [ConflictError] is not produced here; the collection layer returns it when
// a mutation targets a record the server no longer has.
//
// Usage:
//
//	c := client.New("http://localhost:3001/api", client.WithTimeout(10*time.Second))
//	users, err := c.List(ctx)
package client
