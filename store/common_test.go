package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/virtue186/sequencer/types"
)

var engineTypes = []EngineType{EnginePebble, EngineLevelDB, EngineInMemory}

func newTestStore(t *testing.T, engineType EngineType) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test"), engineType, Opts{})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// forEachEngine runs fn against a fresh store of every engine type.
func forEachEngine(t *testing.T, fn func(t *testing.T, s *Store)) {
	for _, engineType := range engineTypes {
		t.Run(engineType.String(), func(t *testing.T) {
			fn(t, newTestStore(t, engineType))
		})
	}
}

func randomTransaction() *types.Transaction {
	return types.NewInvokeTransactionV1(
		types.RandomFelt(),
		types.NewFelt(1000),
		[]types.Felt{types.RandomFelt()},
		types.NewFelt(0),
		types.RandomFelt(),
		[]types.Felt{types.NewFelt(10), types.NewFelt(0)},
	)
}

func randomBlock(height uint64) *types.MaybePendingBlock {
	return types.NewMaybePendingBlock(&types.Block{
		Status:           types.BlockAcceptedOnL2,
		BlockHash:        types.RandomFelt(),
		ParentHash:       types.RandomFelt(),
		BlockNumber:      height,
		NewRoot:          types.RandomFelt(),
		Timestamp:        1700000000 + height,
		SequencerAddress: types.RandomFelt(),
		Transactions:     []types.Transaction{*randomTransaction(), *randomTransaction()},
	})
}

func randomReceipt(txHash types.Felt, fee uint64) *types.TransactionReceipt {
	blockHash := types.RandomFelt()
	blockNumber := uint64(1)
	return &types.TransactionReceipt{
		TransactionHash: txHash,
		Type:            types.TransactionInvoke,
		ActualFee:       types.NewFelt(fee),
		ExecutionStatus: types.ExecutionSucceeded,
		FinalityStatus:  types.FinalityAcceptedOnL2,
		BlockHash:       &blockHash,
		BlockNumber:     &blockNumber,
		Events: []types.Event{{
			FromAddress: types.RandomFelt(),
			Keys:        []types.Felt{types.RandomFelt()},
			Data:        []types.Felt{types.NewFelt(fee)},
		}},
	}
}
