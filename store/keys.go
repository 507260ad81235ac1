package store

import (
	"encoding/binary"

	"github.com/virtue186/sequencer/types"
)

const (
	blockPrefix        = 'B'
	blockHeightPrefix  = 'H'
	pendingBlockPrefix = 'P'
	transactionPrefix  = 'T'
	receiptPrefix      = 'R'
	valuePrefix        = 'M'
)

var pendingBlockKey = []byte{pendingBlockPrefix}

func blockKey(hash types.Felt) []byte {
	return feltKey(blockPrefix, hash)
}

// blockHeightKey 字节前缀 + 8 字节大端高度，保证按高度有序
func blockHeightKey(height uint64) []byte {
	b := make([]byte, 1+8)
	b[0] = blockHeightPrefix
	binary.BigEndian.PutUint64(b[1:], height)
	return b
}

func transactionKey(hash types.Felt) []byte {
	return feltKey(transactionPrefix, hash)
}

func receiptKey(txHash types.Felt) []byte {
	return feltKey(receiptPrefix, txHash)
}

func valueKey(key []byte) []byte {
	b := make([]byte, 0, 1+len(key))
	b = append(b, valuePrefix)
	return append(b, key...)
}

func feltKey(prefix byte, f types.Felt) []byte {
	b := make([]byte, 0, 1+types.FeltLength)
	b = append(b, prefix)
	return append(b, f.Bytes()...)
}
