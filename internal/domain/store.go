package domain

// KVStore is the persistent key-value store. Keys are namespaced strings
// ("dynamic-feed:cache:123"), values are JSON encoded.
type KVStore interface {
	// Get decodes the value stored at key into dest; false when missing
	Get(key string, dest any) bool

	Set(key string, value any) error
	Delete(key string)

	// DeletePrefix removes every key starting with prefix
	DeletePrefix(prefix string)

	Close() error
}
