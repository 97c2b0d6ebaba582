package badger

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Open opens the Badger store at path. An empty path opens an in-memory
// store that disappears on Close.
func Open(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.
		WithLogger(nil).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return db, nil
}
