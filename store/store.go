package store

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/virtue186/sequencer/metrics"
	"github.com/virtue186/sequencer/types"
)

// EngineType selects the physical backend of a Store.
type EngineType int

const (
	// EnginePebble 日志结构存储，落盘
	EnginePebble EngineType = iota
	// EngineLevelDB 嵌入式存储，落盘
	EngineLevelDB
	// EngineInMemory 进程内存，不落盘
	EngineInMemory
)

func (t EngineType) String() string {
	switch t {
	case EnginePebble:
		return "pebble"
	case EngineLevelDB:
		return "leveldb"
	case EngineInMemory:
		return "memory"
	default:
		return fmt.Sprintf("EngineType(%d)", int(t))
	}
}

// suffix is appended to the base path so different engines never share a
// directory.
func (t EngineType) suffix() string {
	switch t {
	case EnginePebble:
		return ".pebble"
	case EngineLevelDB:
		return ".leveldb"
	default:
		return ""
	}
}

// ParseEngineType maps a configuration name to an EngineType.
func ParseEngineType(s string) (EngineType, error) {
	switch strings.ToLower(s) {
	case "pebble":
		return EnginePebble, nil
	case "leveldb":
		return EngineLevelDB, nil
	case "memory", "inmemory", "in-memory":
		return EngineInMemory, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownEngine, s)
	}
}

func openEngine(path string, engineType EngineType) (Engine, error) {
	switch engineType {
	case EnginePebble:
		return NewPebbleEngine(path + engineType.suffix())
	case EngineLevelDB:
		return NewLevelDBEngine(path + engineType.suffix())
	case EngineInMemory:
		return NewInMemoryEngine(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, engineType)
	}
}

// Opts 是 Store 的可选依赖
type Opts struct {
	Logger  log.Logger            // 可选
	Metrics *metrics.StoreMetrics // 可选
}

// engineHandle is shared by every copy of a Store. The engine is only
// touched while mu is held.
type engineHandle struct {
	mu       sync.Mutex
	engine   Engine
	closed   bool
	poisoned bool
}

// Store is the single entry point to persistence for the rest of the node.
// Copies of a Store share one engine and one lock.
type Store struct {
	logger     log.Logger
	metrics    *metrics.StoreMetrics
	engineType EngineType
	handle     *engineHandle
}

// New opens the engine selected by engineType under path plus the engine
// suffix and makes sure the chain height is initialised.
func New(path string, engineType EngineType, opts Opts) (*Store, error) {
	engine, err := openEngine(path, engineType)
	if err != nil {
		return nil, fmt.Errorf("could not create %s store: %w", engineType, err)
	}
	s, err := newStore(engine, engineType, opts)
	if err != nil {
		engine.Close()
		return nil, err
	}
	level.Info(s.logger).Log("msg", "store opened", "engine", engineType, "path", path+engineType.suffix())
	return s, nil
}

func newStore(engine Engine, engineType EngineType, opts Opts) (*Store, error) {
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}
	s := &Store{
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		engineType: engineType,
		handle:     &engineHandle{engine: engine},
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, ok, err := s.GetHeight()
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	level.Info(s.logger).Log("msg", "no chain height stored, starting at 0")
	return s.SetHeight(0)
}

func (s *Store) EngineType() EngineType {
	return s.engineType
}

// do runs fn with exclusive access to the engine. A panic inside fn
// poisons the store for every copy and is re-raised.
func (s *Store) do(op string, fn func(Engine) error) (err error) {
	start := time.Now()
	panicked := false
	defer func() {
		if panicked {
			s.metrics.ObservePanic(op, start)
			return
		}
		s.metrics.Observe(op, start, err)
	}()

	h := s.handle
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.poisoned {
		return ErrStorePoisoned
	}
	if h.closed {
		return ErrStoreClosed
	}

	defer func() {
		if r := recover(); r != nil {
			panicked = true
			h.poisoned = true
			level.Error(s.logger).Log("msg", "engine panicked, store poisoned", "op", op, "panic", r)
			panic(r)
		}
	}()
	return fn(h.engine)
}

// AddTransaction and AddTransactionReceipt reject nil before taking the
// lock, so a caller bug can never poison the store.
func (s *Store) AddTransaction(tx *types.Transaction) error {
	if tx == nil {
		return ErrNilTransaction
	}
	return s.do("add_transaction", func(e Engine) error {
		return e.AddTransaction(tx)
	})
}

func (s *Store) GetTransaction(hash types.Felt) (*types.Transaction, error) {
	var tx *types.Transaction
	err := s.do("get_transaction", func(e Engine) (err error) {
		tx, err = e.GetTransaction(hash)
		return err
	})
	return tx, err
}

func (s *Store) AddBlock(block *types.MaybePendingBlock) error {
	if block == nil {
		return ErrEmptyBlock
	}
	return s.do("add_block", func(e Engine) error {
		return e.AddBlock(block)
	})
}

func (s *Store) GetBlockByHash(hash types.Felt) (*types.MaybePendingBlock, error) {
	var block *types.MaybePendingBlock
	err := s.do("get_block_by_hash", func(e Engine) (err error) {
		block, err = e.GetBlockByHash(hash)
		return err
	})
	return block, err
}

func (s *Store) GetBlockByHeight(height uint64) (*types.MaybePendingBlock, error) {
	var block *types.MaybePendingBlock
	err := s.do("get_block_by_height", func(e Engine) (err error) {
		block, err = e.GetBlockByHeight(height)
		return err
	})
	return block, err
}

func (s *Store) GetPendingBlock() (*types.MaybePendingBlock, error) {
	var block *types.MaybePendingBlock
	err := s.do("get_pending_block", func(e Engine) (err error) {
		block, err = e.GetPendingBlock()
		return err
	})
	return block, err
}

func (s *Store) AddTransactionReceipt(receipt *types.TransactionReceipt) error {
	if receipt == nil {
		return ErrNilReceipt
	}
	return s.do("add_transaction_receipt", func(e Engine) error {
		return e.AddTransactionReceipt(receipt)
	})
}

func (s *Store) GetTransactionReceipt(txHash types.Felt) (*types.TransactionReceipt, error) {
	var receipt *types.TransactionReceipt
	err := s.do("get_transaction_receipt", func(e Engine) (err error) {
		receipt, err = e.GetTransactionReceipt(txHash)
		return err
	})
	return receipt, err
}

// SetValue stores collaborator metadata. Chain metadata keys are rejected.
func (s *Store) SetValue(key, value []byte) error {
	if isReservedKey(key) {
		return fmt.Errorf("%w: %q", ErrReservedKey, key)
	}
	return s.do("set_value", func(e Engine) error {
		return e.SetValue(key, value)
	})
}

func (s *Store) GetValue(key []byte) ([]byte, error) {
	var value []byte
	err := s.do("get_value", func(e Engine) (err error) {
		value, err = e.GetValue(key)
		return err
	})
	return value, err
}

func (s *Store) SetHeight(height uint64) error {
	return s.do("set_height", func(e Engine) error {
		return e.SetValue(heightKey, encodeHeight(height))
	})
}

// GetHeight returns the chain height. ok is false when no height is
// stored; malformed bytes are reported as ErrCorruptHeight rather than
// treated as absent.
func (s *Store) GetHeight() (height uint64, ok bool, err error) {
	var raw []byte
	err = s.do("get_height", func(e Engine) (err error) {
		raw, err = e.GetValue(heightKey)
		return err
	})
	if err != nil || raw == nil {
		return 0, false, err
	}
	height, err = decodeHeight(raw)
	if err != nil {
		return 0, false, err
	}
	return height, true, nil
}

// Close closes the engine for every copy of the store.
func (s *Store) Close() error {
	h := s.handle
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrStoreClosed
	}
	h.closed = true
	level.Info(s.logger).Log("msg", "store closed", "engine", s.engineType)
	return h.engine.Close()
}
