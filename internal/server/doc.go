// Package server exposes the user store over HTTP.
//
// It is the remote store the client talks to. Routes, all under the
// configured base path (default "/api"):
//
//	GET    /users                  - List users (?page=&limit= for a page)
//	GET    /users/search?q=        - Search users by name, phone or country
//	GET    /users/{id}             - Get user by ID
//	POST   /users                  - Create user (server assigns the ID)
//	PUT    /users/{id}             - Replace user fields
//	PATCH  /users/{id}             - Update some user fields
//	DELETE /users/{id}             - Delete user
//	GET    /health                 - Liveness and store reachability
//
// Request bodies are validated with the same rules as the form, so a
// client that skips validation still cannot store an invalid record.
package server
