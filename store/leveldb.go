package store

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// levelDBStore is the embedded durable medium.
type levelDBStore struct {
	db        *leveldb.DB
	writeOpts *opt.WriteOptions
}

// NewLevelDBEngine opens or creates a LevelDB database at path.
func NewLevelDBEngine(path string) (Engine, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb at %s: %w", path, err)
	}
	return newKVEngine(&levelDBStore{
		db:        db,
		writeOpts: &opt.WriteOptions{Sync: true},
	}), nil
}

func (s *levelDBStore) get(key []byte) ([]byte, bool, error) {
	value, err := s.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *levelDBStore) write(pairs ...keyValue) error {
	batch := new(leveldb.Batch)
	for _, kv := range pairs {
		batch.Put(kv.key, kv.value)
	}
	return s.db.Write(batch, s.writeOpts)
}

func (s *levelDBStore) close() error {
	return s.db.Close()
}
