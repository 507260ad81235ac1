package store

import (
	"bytes"
	"fmt"

	"github.com/virtue186/sequencer/types"
)

// Engine is implemented by every physical storage backend.
//
// Reads return a nil value and a nil error when the key is absent. Writes
// to durable engines are synced before they return. An Engine is not safe
// for concurrent use; Store serialises all access to it.
type Engine interface {
	AddTransaction(*types.Transaction) error
	GetTransaction(hash types.Felt) (*types.Transaction, error)

	AddBlock(*types.MaybePendingBlock) error
	GetBlockByHash(hash types.Felt) (*types.MaybePendingBlock, error)
	GetBlockByHeight(height uint64) (*types.MaybePendingBlock, error)
	GetPendingBlock() (*types.MaybePendingBlock, error)

	SetValue(key, value []byte) error
	GetValue(key []byte) ([]byte, error)

	AddTransactionReceipt(*types.TransactionReceipt) error
	GetTransactionReceipt(txHash types.Felt) (*types.TransactionReceipt, error)

	Close() error
}

type keyValue struct {
	key   []byte
	value []byte
}

// keyValueStore is the raw medium under an engine. write applies all
// pairs atomically.
type keyValueStore interface {
	get(key []byte) (value []byte, found bool, err error)
	write(pairs ...keyValue) error
	close() error
}

// kvEngine maps the entity schema onto a raw key-value medium. All
// backends share it, so they behave identically above the medium.
type kvEngine struct {
	kv keyValueStore
}

func newKVEngine(kv keyValueStore) *kvEngine {
	return &kvEngine{kv: kv}
}

func (e *kvEngine) AddTransaction(tx *types.Transaction) error {
	if tx == nil {
		return ErrNilTransaction
	}
	data, err := encodeValue[*types.Transaction](JSONEncoder[*types.Transaction]{}, tx)
	if err != nil {
		return fmt.Errorf("encode transaction %s: %w", tx.Hash, err)
	}
	key := transactionKey(tx.Hash)
	existing, found, err := e.kv.get(key)
	if err != nil {
		return err
	}
	if found {
		if bytes.Equal(existing, data) {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrTransactionExists, tx.Hash)
	}
	return e.kv.write(keyValue{key, data})
}

func (e *kvEngine) GetTransaction(hash types.Felt) (*types.Transaction, error) {
	data, found, err := e.kv.get(transactionKey(hash))
	if err != nil || !found {
		return nil, err
	}
	tx, err := decodeValue[types.Transaction](JSONDecoder[*types.Transaction]{}, data)
	if err != nil {
		return nil, fmt.Errorf("decode transaction %s: %w", hash, err)
	}
	return tx, nil
}

// AddBlock writes a finalized block and its height index in one batch. A
// pending block replaces the previous pending block.
func (e *kvEngine) AddBlock(block *types.MaybePendingBlock) error {
	if block == nil || (block.Block == nil && block.Pending == nil) {
		return ErrEmptyBlock
	}
	data, err := encodeValue[*types.MaybePendingBlock](JSONEncoder[*types.MaybePendingBlock]{}, block)
	if err != nil {
		return fmt.Errorf("encode block: %w", err)
	}
	if block.IsPending() {
		return e.kv.write(keyValue{pendingBlockKey, data})
	}

	hash := block.Block.BlockHash
	return e.kv.write(
		keyValue{blockKey(hash), data},
		keyValue{blockHeightKey(block.Block.BlockNumber), hash.Bytes()},
	)
}

func (e *kvEngine) GetBlockByHash(hash types.Felt) (*types.MaybePendingBlock, error) {
	data, found, err := e.kv.get(blockKey(hash))
	if err != nil || !found {
		return nil, err
	}
	return decodeBlock(data)
}

func (e *kvEngine) GetBlockByHeight(height uint64) (*types.MaybePendingBlock, error) {
	hashBytes, found, err := e.kv.get(blockHeightKey(height))
	if err != nil || !found {
		return nil, err
	}
	if len(hashBytes) != types.FeltLength {
		return nil, fmt.Errorf("%w: height %d holds %d bytes", ErrCorruptIndex, height, len(hashBytes))
	}
	hash, err := types.FeltFromBytes(hashBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: height %d: %v", ErrCorruptIndex, height, err)
	}
	block, err := e.GetBlockByHash(hash)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, fmt.Errorf("%w: height %d points at missing block %s", ErrCorruptIndex, height, hash)
	}
	return block, nil
}

func (e *kvEngine) GetPendingBlock() (*types.MaybePendingBlock, error) {
	data, found, err := e.kv.get(pendingBlockKey)
	if err != nil || !found {
		return nil, err
	}
	return decodeBlock(data)
}

func (e *kvEngine) SetValue(key, value []byte) error {
	return e.kv.write(keyValue{valueKey(key), value})
}

// GetValue returns an empty, non-nil slice for a stored empty value so it
// can be told apart from an absent key.
func (e *kvEngine) GetValue(key []byte) ([]byte, error) {
	value, found, err := e.kv.get(valueKey(key))
	if err != nil || !found {
		return nil, err
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

func (e *kvEngine) AddTransactionReceipt(receipt *types.TransactionReceipt) error {
	if receipt == nil {
		return ErrNilReceipt
	}
	data, err := encodeValue[*types.TransactionReceipt](JSONEncoder[*types.TransactionReceipt]{}, receipt)
	if err != nil {
		return fmt.Errorf("encode receipt %s: %w", receipt.TransactionHash, err)
	}
	return e.kv.write(keyValue{receiptKey(receipt.TransactionHash), data})
}

func (e *kvEngine) GetTransactionReceipt(txHash types.Felt) (*types.TransactionReceipt, error) {
	data, found, err := e.kv.get(receiptKey(txHash))
	if err != nil || !found {
		return nil, err
	}
	receipt, err := decodeValue[types.TransactionReceipt](JSONDecoder[*types.TransactionReceipt]{}, data)
	if err != nil {
		return nil, fmt.Errorf("decode receipt %s: %w", txHash, err)
	}
	return receipt, nil
}

func (e *kvEngine) Close() error {
	return e.kv.close()
}

func decodeBlock(data []byte) (*types.MaybePendingBlock, error) {
	block, err := decodeValue[types.MaybePendingBlock](JSONDecoder[*types.MaybePendingBlock]{}, data)
	if err != nil {
		return nil, fmt.Errorf("decode block: %w", err)
	}
	return block, nil
}
