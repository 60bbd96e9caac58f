package storage

// New selects a store for the given archive path. An empty path yields an
// in-memory store, anything else a SQLite file.
func New(path string) Store {
	if path == "" {
		return NewMemoryStore()
	}
	return NewSQLiteStore(path)
}
