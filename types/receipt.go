package types

type ExecutionStatus string

const (
	ExecutionSucceeded ExecutionStatus = "SUCCEEDED"
	ExecutionReverted  ExecutionStatus = "REVERTED"
)

type FinalityStatus string

const (
	FinalityAcceptedOnL2 FinalityStatus = "ACCEPTED_ON_L2"
	FinalityAcceptedOnL1 FinalityStatus = "ACCEPTED_ON_L1"
)

type Event struct {
	FromAddress Felt   `json:"from_address"`
	Keys        []Felt `json:"keys"`
	Data        []Felt `json:"data"`
}

type MessageToL1 struct {
	FromAddress Felt   `json:"from_address"`
	ToAddress   Felt   `json:"to_address"`
	Payload     []Felt `json:"payload"`
}

// TransactionReceipt is the execution outcome of a transaction. A receipt
// without block hash and number belongs to the pending block.
type TransactionReceipt struct {
	TransactionHash Felt            `json:"transaction_hash"`
	Type            TransactionType `json:"type"`
	ActualFee       Felt            `json:"actual_fee"`
	ExecutionStatus ExecutionStatus `json:"execution_status"`
	FinalityStatus  FinalityStatus  `json:"finality_status"`
	RevertReason    string          `json:"revert_reason,omitempty"`

	BlockHash   *Felt   `json:"block_hash,omitempty"`
	BlockNumber *uint64 `json:"block_number,omitempty"`

	// deploy and deploy account receipts
	ContractAddress *Felt `json:"contract_address,omitempty"`

	MessagesSent []MessageToL1 `json:"messages_sent"`
	Events       []Event       `json:"events"`
}

func (r *TransactionReceipt) IsPending() bool {
	return r.BlockHash == nil
}
