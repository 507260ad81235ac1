package store

import "errors"

var (
	// ErrCorruptHeight is returned when the stored height is not an 8 byte
	// big-endian integer.
	ErrCorruptHeight = errors.New("corrupt height record")

	// ErrCorruptIndex is returned when the height index points at a block
	// that is not stored, or holds a malformed hash.
	ErrCorruptIndex = errors.New("corrupt block height index")

	// ErrReservedKey is returned when a caller writes a chain metadata key
	// through the generic value slot.
	ErrReservedKey = errors.New("key is reserved for chain metadata")

	// ErrTransactionExists is returned when a different transaction is
	// already stored under the same hash.
	ErrTransactionExists = errors.New("transaction already stored with different content")

	// ErrEmptyBlock 区块既没有已确认内容也没有待定内容
	ErrEmptyBlock = errors.New("block has neither finalized nor pending body")
	// ErrNilTransaction 写入了空交易
	ErrNilTransaction = errors.New("transaction is nil")
	// ErrNilReceipt 写入了空回执
	ErrNilReceipt = errors.New("transaction receipt is nil")
	// ErrUnknownEngine is returned for an engine name or type no backend serves.
	ErrUnknownEngine = errors.New("unknown engine type")
	// ErrStoreClosed is returned by every call after Close.
	ErrStoreClosed = errors.New("store is closed")

	// ErrStorePoisoned is returned by every call after an engine call
	// panicked while holding the store lock.
	ErrStorePoisoned = errors.New("store poisoned by a panic in the engine")
)
