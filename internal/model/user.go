// Package model defines the data structures shared by every layer. The
// structs carry their JSON tags directly — the API responses are the
// entities themselves, there is no separate DTO layer.
package model

import "time"

// User represents a registered account. It is the root of ownership: every
// log, intervention, and chat message belongs to exactly one user, and every
// read is scoped by the owning user's ID.
//
// WHY ExternalUID?
// Authentication is delegated to an external identity provider. The provider
// hands the client an opaque identity token; the server maps that token's
// subject to exactly one User row. ExternalUID is that subject — the only
// authentication mechanism in the system. It is unique per user, as is email.
//
// WHY int64 IDs?
// IDs are allocated by the storage backend (a monotonic counter), not by the
// database engine's autoincrement, so that both the in-memory and the
// persistent backend share identical allocation semantics.
type User struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	ExternalUID string    `json:"externalUid"`
	CreatedAt   time.Time `json:"createdAt"`
}
