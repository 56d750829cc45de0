package docstore

// Store persists extracted documents between process runs. Implementations
// must be safe for concurrent use.
type Store interface {
	Put(filename string, payload string) error
	GetAll() (map[string]string, error)
	Clear() error
	SetMeta(key string, value string) error
	GetMeta(key string) (string, error)
	Close() error
}
