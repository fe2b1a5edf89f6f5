package app

// Storage is the durable client store the cart persists into after every
// mutation.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}
