// Package storage is the durable client-side key/value store that survives
// process restarts: the cart, the cached auth user and the access token each
// live under their own namespaced key.
package storage

import "errors"

// Keys mirror the browser client this service shipped with first; keeping
// them stable lets state written by either client be read by the other
// through the same Redis deployment.
const (
	KeyCart      = "cart-storage"
	KeyAuthUser  = "auth-storage"
	KeyAuthToken = "sb-access-token"
)

var ErrNotFound = errors.New("storage: key not found")

// Store is a tiny durable KV surface. Implementations must make Set visible
// to a later Get across process restarts.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}
