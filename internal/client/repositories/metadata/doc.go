// Package metadata is the client's persisted key-value storage.
//
// The session store keeps the serialized user under KeyUser, the bearer token
// under KeyToken and a redundant logged-in marker under KeyLoggedIn. Writes are
// atomic per key; Update groups several writes when the backend supports it.
//
// Get returns (nil, nil) for a missing key.
package metadata
