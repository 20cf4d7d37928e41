// Package connection talks to the Gym One backend.
//
//   - http.go: HTTPClient, the single guarded call path used by every store
//   - errors.go: APIError and the invalid-token heuristic
//   - guard.go: Guard, the idempotent forced logout
//   - manager.go: Manager, the session lifecycle (init, login, logout)
//
// Every store composes an HTTPClient; none of them reads the session or
// reacts to an expired credential on its own.
package connection
