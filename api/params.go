package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/virtue186/sequencer/types"
)

const (
	BlockTagLatest  = "latest"
	BlockTagPending = "pending"
)

// BlockID is either a tag, a block hash or a block number.
type BlockID struct {
	Tag    string
	Hash   *types.Felt
	Number *uint64
}

func (id *BlockID) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err == nil {
		if tag != BlockTagLatest && tag != BlockTagPending {
			return fmt.Errorf("unknown block tag %q", tag)
		}
		*id = BlockID{Tag: tag}
		return nil
	}

	var obj struct {
		Hash   *types.Felt `json:"block_hash"`
		Number *uint64     `json:"block_number"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if (obj.Hash == nil) == (obj.Number == nil) {
		return fmt.Errorf("block id needs exactly one of block_hash or block_number")
	}
	*id = BlockID{Hash: obj.Hash, Number: obj.Number}
	return nil
}

// unmarshalParams accepts params both by position and by name.
func unmarshalParams(raw json.RawMessage, names []string, out ...interface{}) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		if len(out) == 0 {
			return nil
		}
		return fmt.Errorf("missing params")
	}

	switch raw[0] {
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil {
			return err
		}
		if len(list) != len(out) {
			return fmt.Errorf("expected %d params, got %d", len(out), len(list))
		}
		for i := range out {
			if err := json.Unmarshal(list[i], out[i]); err != nil {
				return fmt.Errorf("%s: %w", names[i], err)
			}
		}
	case '{':
		var named map[string]json.RawMessage
		if err := json.Unmarshal(raw, &named); err != nil {
			return err
		}
		for i, name := range names {
			value, ok := named[name]
			if !ok {
				return fmt.Errorf("missing param %s", name)
			}
			if err := json.Unmarshal(value, out[i]); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
	default:
		return fmt.Errorf("params must be an array or an object")
	}
	return nil
}
