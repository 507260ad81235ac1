package store

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/virtue186/sequencer/metrics"
	"github.com/virtue186/sequencer/types"
)

func TestStoreHeight(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *Store) {
		// height starts at 0
		height, ok, err := s.GetHeight()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, uint64(0), height)

		require.NoError(t, s.SetHeight(25))
		height, ok, err = s.GetHeight()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, uint64(25), height)

		require.NoError(t, s.SetHeight(^uint64(0)))
		height, _, err = s.GetHeight()
		require.NoError(t, err)
		assert.Equal(t, ^uint64(0), height)
	})
}

func TestStoreTransaction(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *Store) {
		txHash := types.NewFelt(123123)
		txFee := types.NewFelt(89853483)
		txSignature := []types.Felt{types.NewFelt(183728913)}
		txNonce := types.NewFelt(5)
		txSender := types.NewFelt(91232018)
		txCalldata := []types.Felt{types.NewFelt(10), types.NewFelt(0)}

		tx := types.NewInvokeTransactionV1(txHash, txFee, txSignature, txNonce, txSender, txCalldata)
		require.NoError(t, s.AddTransaction(tx))

		stored, err := s.GetTransaction(txHash)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, txHash, stored.Hash)
		assert.Equal(t, txFee, *stored.MaxFee)
		assert.Equal(t, txSignature, stored.Signature)
		assert.Equal(t, txNonce, *stored.Nonce)
		assert.Equal(t, txSender, *stored.SenderAddress)
		assert.Equal(t, txCalldata, stored.Calldata)
		assert.Equal(t, tx, stored)

		// repeated reads are stable
		again, err := s.GetTransaction(txHash)
		require.NoError(t, err)
		assert.Equal(t, stored, again)

		missing, err := s.GetTransaction(types.NewFelt(1))
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}

func TestStoreTransactionImmutable(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *Store) {
		tx := randomTransaction()
		require.NoError(t, s.AddTransaction(tx))
		require.NoError(t, s.AddTransaction(tx))

		conflicting := *tx
		conflicting.Calldata = []types.Felt{types.NewFelt(99)}
		assert.ErrorIs(t, s.AddTransaction(&conflicting), ErrTransactionExists)

		stored, err := s.GetTransaction(tx.Hash)
		require.NoError(t, err)
		assert.Equal(t, tx, stored)
	})
}

func TestStoreBlock(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *Store) {
		blocks := make([]*types.MaybePendingBlock, 0, 10)
		for i := uint64(0); i < 10; i++ {
			block := randomBlock(i)
			require.NoError(t, s.AddBlock(block))
			blocks = append(blocks, block)
		}

		for _, block := range blocks {
			byHash, err := s.GetBlockByHash(block.Block.BlockHash)
			require.NoError(t, err)
			byHeight, err := s.GetBlockByHeight(block.Block.BlockNumber)
			require.NoError(t, err)

			assert.Equal(t, block, byHash)
			assert.Equal(t, byHash, byHeight)
		}

		missing, err := s.GetBlockByHash(types.RandomFelt())
		require.NoError(t, err)
		assert.Nil(t, missing)

		missing, err = s.GetBlockByHeight(100)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}

func TestStoreBlockReplacesHeight(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *Store) {
		first := randomBlock(4)
		second := randomBlock(4)
		require.NoError(t, s.AddBlock(first))
		require.NoError(t, s.AddBlock(second))

		byHeight, err := s.GetBlockByHeight(4)
		require.NoError(t, err)
		assert.Equal(t, second, byHeight)
	})
}

func TestStorePendingBlock(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *Store) {
		pending, err := s.GetPendingBlock()
		require.NoError(t, err)
		assert.Nil(t, pending)

		block := types.NewMaybePendingBlockFromPending(&types.PendingBlock{
			ParentHash:       types.RandomFelt(),
			Timestamp:        1700000000,
			SequencerAddress: types.RandomFelt(),
			Transactions:     []types.Transaction{*randomTransaction()},
		})
		require.NoError(t, s.AddBlock(block))

		pending, err = s.GetPendingBlock()
		require.NoError(t, err)
		assert.True(t, pending.IsPending())
		assert.Equal(t, block, pending)

		assert.ErrorIs(t, s.AddBlock(&types.MaybePendingBlock{}), ErrEmptyBlock)
		assert.ErrorIs(t, s.AddBlock(nil), ErrEmptyBlock)
	})
}

func TestStoreReceipt(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *Store) {
		txHash := types.RandomFelt()
		first := randomReceipt(txHash, 100)
		second := randomReceipt(txHash, 200)

		require.NoError(t, s.AddTransactionReceipt(first))
		stored, err := s.GetTransactionReceipt(txHash)
		require.NoError(t, err)
		assert.Equal(t, first, stored)

		require.NoError(t, s.AddTransactionReceipt(second))
		stored, err = s.GetTransactionReceipt(txHash)
		require.NoError(t, err)
		assert.Equal(t, second, stored)

		missing, err := s.GetTransactionReceipt(types.RandomFelt())
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}

func TestStoreEmptyCollections(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *Store) {
		tx := types.NewInvokeTransactionV1(types.RandomFelt(), types.NewFelt(1000), []types.Felt{}, types.NewFelt(0), types.RandomFelt(), []types.Felt{})
		tx.ConstructorCalldata = []types.Felt{}
		require.NoError(t, s.AddTransaction(tx))
		storedTx, err := s.GetTransaction(tx.Hash)
		require.NoError(t, err)
		assert.Equal(t, tx, storedTx)
		assert.NotNil(t, storedTx.Calldata)
		assert.NotNil(t, storedTx.Signature)

		// nil lists stay nil
		bare := &types.Transaction{Hash: types.RandomFelt(), Type: types.TransactionL1Handler}
		require.NoError(t, s.AddTransaction(bare))
		storedTx, err = s.GetTransaction(bare.Hash)
		require.NoError(t, err)
		assert.Equal(t, bare, storedTx)

		receipt := randomReceipt(tx.Hash, 10)
		receipt.Events = []types.Event{}
		receipt.MessagesSent = []types.MessageToL1{}
		require.NoError(t, s.AddTransactionReceipt(receipt))
		storedReceipt, err := s.GetTransactionReceipt(tx.Hash)
		require.NoError(t, err)
		assert.Equal(t, receipt, storedReceipt)

		block := randomBlock(4)
		block.Block.Transactions = []types.Transaction{}
		require.NoError(t, s.AddBlock(block))
		storedBlock, err := s.GetBlockByHeight(4)
		require.NoError(t, err)
		assert.Equal(t, block, storedBlock)

		pending := types.NewMaybePendingBlockFromPending(&types.PendingBlock{
			ParentHash:   block.Block.BlockHash,
			Timestamp:    1700000005,
			Transactions: []types.Transaction{},
		})
		require.NoError(t, s.AddBlock(pending))
		storedPending, err := s.GetPendingBlock()
		require.NoError(t, err)
		assert.Equal(t, pending, storedPending)
	})
}

func TestStoreNilWrites(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *Store) {
		dup := *s
		assert.ErrorIs(t, s.AddTransaction(nil), ErrNilTransaction)
		assert.ErrorIs(t, s.AddTransactionReceipt(nil), ErrNilReceipt)
		assert.ErrorIs(t, s.AddBlock(nil), ErrEmptyBlock)

		_, ok, err := dup.GetHeight()
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestEngineNilWrites(t *testing.T) {
	engine := NewInMemoryEngine()
	defer engine.Close()

	assert.ErrorIs(t, engine.AddTransaction(nil), ErrNilTransaction)
	assert.ErrorIs(t, engine.AddTransactionReceipt(nil), ErrNilReceipt)
	assert.ErrorIs(t, engine.AddBlock(nil), ErrEmptyBlock)
	assert.ErrorIs(t, engine.AddBlock(&types.MaybePendingBlock{}), ErrEmptyBlock)
}

func TestStoreValue(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *Store) {
		pairs := map[string][]byte{
			"chain_id":  []byte("SN_SEPOLIA"),
			"\x00\x01":  {0xff, 0x00, 0x10},
			"empty":     {},
			"heightish": []byte("height"),
		}
		for k, v := range pairs {
			require.NoError(t, s.SetValue([]byte(k), v))
		}
		for k, v := range pairs {
			got, err := s.GetValue([]byte(k))
			require.NoError(t, err)
			require.NotNil(t, got, k)
			assert.Equal(t, v, got, k)
		}

		missing, err := s.GetValue([]byte("never written"))
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}

func TestStoreReservedKey(t *testing.T) {
	s := newTestStore(t, EngineInMemory)
	assert.ErrorIs(t, s.SetValue([]byte("height"), []byte{1}), ErrReservedKey)

	height, ok, err := s.GetHeight()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(0), height)

	// the raw height bytes are still readable
	raw, err := s.GetValue([]byte("height"))
	require.NoError(t, err)
	assert.Equal(t, encodeHeight(0), raw)
}

func TestStoreCorruptHeight(t *testing.T) {
	engine := NewInMemoryEngine()
	s, err := newStore(engine, EngineInMemory, Opts{})
	require.NoError(t, err)

	require.NoError(t, engine.SetValue(heightKey, []byte{1, 2, 3}))
	_, ok, err := s.GetHeight()
	assert.ErrorIs(t, err, ErrCorruptHeight)
	assert.False(t, ok)

	_, err = newStore(engine, EngineInMemory, Opts{})
	assert.ErrorIs(t, err, ErrCorruptHeight)
}

func TestStoreCopySharesEngine(t *testing.T) {
	s := newTestStore(t, EngineInMemory)
	dup := *s

	require.NoError(t, dup.SetHeight(9))
	height, _, err := s.GetHeight()
	require.NoError(t, err)
	assert.Equal(t, uint64(9), height)

	tx := randomTransaction()
	require.NoError(t, s.AddTransaction(tx))
	stored, err := dup.GetTransaction(tx.Hash)
	require.NoError(t, err)
	assert.Equal(t, tx, stored)
}

func TestStoreConcurrentAccess(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *Store) {
		var g errgroup.Group
		for i := 0; i < 32; i++ {
			g.Go(func() error {
				dup := *s
				key := []byte(fmt.Sprintf("worker-%d", i))
				if err := dup.SetValue(key, []byte{byte(i)}); err != nil {
					return err
				}
				if err := dup.AddTransaction(randomTransaction()); err != nil {
					return err
				}
				_, _, err := dup.GetHeight()
				return err
			})
		}
		require.NoError(t, g.Wait())

		for i := 0; i < 32; i++ {
			v, err := s.GetValue([]byte(fmt.Sprintf("worker-%d", i)))
			require.NoError(t, err)
			assert.Equal(t, []byte{byte(i)}, v)
		}
	})
}

func TestStoreReopen(t *testing.T) {
	for _, engineType := range []EngineType{EnginePebble, EngineLevelDB} {
		t.Run(engineType.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "test")
			s, err := New(path, engineType, Opts{})
			require.NoError(t, err)

			tx := randomTransaction()
			block := randomBlock(3)
			require.NoError(t, s.AddTransaction(tx))
			require.NoError(t, s.AddBlock(block))
			require.NoError(t, s.SetHeight(3))
			require.NoError(t, s.Close())

			s, err = New(path, engineType, Opts{})
			require.NoError(t, err)
			defer s.Close()

			height, ok, err := s.GetHeight()
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, uint64(3), height)

			stored, err := s.GetTransaction(tx.Hash)
			require.NoError(t, err)
			assert.Equal(t, tx, stored)

			byHeight, err := s.GetBlockByHeight(3)
			require.NoError(t, err)
			assert.Equal(t, block, byHeight)
		})
	}
}

func TestStoreClose(t *testing.T) {
	s, err := New("", EngineInMemory, Opts{})
	require.NoError(t, err)
	dup := *s

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Close(), ErrStoreClosed)

	_, _, err = dup.GetHeight()
	assert.ErrorIs(t, err, ErrStoreClosed)
}

type panicEngine struct {
	Engine
}

func (panicEngine) GetTransaction(types.Felt) (*types.Transaction, error) {
	panic("medium vanished")
}

func TestStorePoisoned(t *testing.T) {
	s, err := newStore(panicEngine{NewInMemoryEngine()}, EngineInMemory, Opts{})
	require.NoError(t, err)
	dup := *s

	assert.Panics(t, func() {
		s.GetTransaction(types.NewFelt(1))
	})

	_, _, err = dup.GetHeight()
	assert.ErrorIs(t, err, ErrStorePoisoned)
	assert.ErrorIs(t, s.SetHeight(1), ErrStorePoisoned)
}

func TestOpenEngineFailure(t *testing.T) {
	for _, engineType := range []EngineType{EnginePebble, EngineLevelDB} {
		t.Run(engineType.String(), func(t *testing.T) {
			// a regular file where the database directory should be
			path := filepath.Join(t.TempDir(), "test")
			require.NoError(t, os.WriteFile(path+engineType.suffix(), []byte("not a database"), 0o600))

			s, err := New(path, engineType, Opts{})
			assert.Error(t, err)
			assert.Nil(t, s)
		})
	}
}

func TestParseEngineType(t *testing.T) {
	for _, engineType := range engineTypes {
		parsed, err := ParseEngineType(engineType.String())
		require.NoError(t, err)
		assert.Equal(t, engineType, parsed)
	}

	_, err := ParseEngineType("rocksdb")
	assert.ErrorIs(t, err, ErrUnknownEngine)
}

func TestStoreMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := New("", EngineInMemory, Opts{Metrics: metrics.NewStoreMetrics(reg)})
	require.NoError(t, err)
	defer s.Close()

	_, _, err = s.GetHeight()
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "sequencer_store_operations_total")
	require.NoError(t, err)
	assert.Greater(t, count, 0)
}

// operationCount sums sequencer_store_operations_total for op and result.
func operationCount(t *testing.T, reg *prometheus.Registry, op, result string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, f := range families {
		if f.GetName() != "sequencer_store_operations_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["op"] == op && labels["result"] == result {
				total += m.GetCounter().GetValue()
			}
		}
	}
	return total
}

func TestStoreMetricsPanic(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := newStore(panicEngine{NewInMemoryEngine()}, EngineInMemory, Opts{Metrics: metrics.NewStoreMetrics(reg)})
	require.NoError(t, err)

	assert.Panics(t, func() {
		s.GetTransaction(types.NewFelt(1))
	})
	assert.Equal(t, float64(1), operationCount(t, reg, "get_transaction", "panic"))
	assert.Equal(t, float64(0), operationCount(t, reg, "get_transaction", "ok"))

	_, _, err = s.GetHeight()
	assert.ErrorIs(t, err, ErrStorePoisoned)
	assert.Equal(t, float64(1), operationCount(t, reg, "get_height", "error"))
}
