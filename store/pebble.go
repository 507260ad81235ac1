package store

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// pebbleStore is the log-structured durable medium, tuned for write heavy
// use.
type pebbleStore struct {
	db *pebble.DB
}

// NewPebbleEngine opens or creates a Pebble database at path.
func NewPebbleEngine(path string) (Engine, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble at %s: %w", path, err)
	}
	return newKVEngine(&pebbleStore{db: db}), nil
}

func (s *pebbleStore) get(key []byte) ([]byte, bool, error) {
	value, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	// value is only valid until closer is closed
	out := make([]byte, len(value))
	copy(out, value)
	if err := closer.Close(); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (s *pebbleStore) write(pairs ...keyValue) error {
	batch := s.db.NewBatch()
	defer batch.Close()
	for _, kv := range pairs {
		if err := batch.Set(kv.key, kv.value, nil); err != nil {
			return err
		}
	}
	return batch.Commit(pebble.Sync)
}

func (s *pebbleStore) close() error {
	return s.db.Close()
}
