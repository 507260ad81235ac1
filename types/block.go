package types

import (
	"encoding/json"
	"fmt"
)

type BlockStatus string

const (
	BlockPending      BlockStatus = "PENDING"
	BlockAcceptedOnL2 BlockStatus = "ACCEPTED_ON_L2"
	BlockAcceptedOnL1 BlockStatus = "ACCEPTED_ON_L1"
	BlockRejected     BlockStatus = "REJECTED"
)

// Block is a finalized block with its full transaction list.
type Block struct {
	Status           BlockStatus   `json:"status"`
	BlockHash        Felt          `json:"block_hash"`
	ParentHash       Felt          `json:"parent_hash"`
	BlockNumber      uint64        `json:"block_number"`
	NewRoot          Felt          `json:"new_root"`
	Timestamp        uint64        `json:"timestamp"`
	SequencerAddress Felt          `json:"sequencer_address"`
	Transactions     []Transaction `json:"transactions"`
}

// PendingBlock is the block under construction. It has neither hash nor
// number yet.
type PendingBlock struct {
	ParentHash       Felt          `json:"parent_hash"`
	Timestamp        uint64        `json:"timestamp"`
	SequencerAddress Felt          `json:"sequencer_address"`
	Transactions     []Transaction `json:"transactions"`
}

// MaybePendingBlock holds exactly one of Block or Pending.
type MaybePendingBlock struct {
	Block   *Block
	Pending *PendingBlock
}

func NewMaybePendingBlock(b *Block) *MaybePendingBlock {
	return &MaybePendingBlock{Block: b}
}

func NewMaybePendingBlockFromPending(p *PendingBlock) *MaybePendingBlock {
	return &MaybePendingBlock{Pending: p}
}

func (b *MaybePendingBlock) IsPending() bool {
	return b.Block == nil && b.Pending != nil
}

func (b MaybePendingBlock) MarshalJSON() ([]byte, error) {
	switch {
	case b.Block != nil:
		return json.Marshal(b.Block)
	case b.Pending != nil:
		return json.Marshal(b.Pending)
	default:
		return nil, fmt.Errorf("block has neither finalized nor pending body")
	}
}

// UnmarshalJSON tells the variants apart by the presence of block_hash,
// which pending blocks never carry.
func (b *MaybePendingBlock) UnmarshalJSON(data []byte) error {
	var probe struct {
		BlockHash *json.RawMessage `json:"block_hash"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.BlockHash != nil {
		block := new(Block)
		if err := json.Unmarshal(data, block); err != nil {
			return err
		}
		*b = MaybePendingBlock{Block: block}
		return nil
	}
	pending := new(PendingBlock)
	if err := json.Unmarshal(data, pending); err != nil {
		return err
	}
	*b = MaybePendingBlock{Pending: pending}
	return nil
}
