package store

import (
	"github.com/patrickmn/go-cache"
)

// memoryStore keeps everything in process memory. Nothing survives the
// process.
type memoryStore struct {
	items *cache.Cache
}

// NewInMemoryEngine returns a volatile engine. Its contents are lost on Close.
func NewInMemoryEngine() Engine {
	return newKVEngine(&memoryStore{
		items: cache.New(cache.NoExpiration, 0),
	})
}

func (s *memoryStore) get(key []byte) ([]byte, bool, error) {
	item, found := s.items.Get(string(key))
	if !found {
		return nil, false, nil
	}
	value := item.([]byte)
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

// 值在写入前复制，调用方之后修改切片不会影响已存储的数据
func (s *memoryStore) write(pairs ...keyValue) error {
	for _, kv := range pairs {
		value := make([]byte, len(kv.value))
		copy(value, kv.value)
		s.items.Set(string(kv.key), value, cache.NoExpiration)
	}
	return nil
}

func (s *memoryStore) close() error {
	s.items.Flush()
	return nil
}
