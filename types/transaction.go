package types

import "github.com/ethereum/go-ethereum/common/hexutil"

type TransactionType string

const (
	TransactionInvoke        TransactionType = "INVOKE"
	TransactionDeclare       TransactionType = "DECLARE"
	TransactionDeploy        TransactionType = "DEPLOY"
	TransactionDeployAccount TransactionType = "DEPLOY_ACCOUNT"
	TransactionL1Handler     TransactionType = "L1_HANDLER"
)

// Transaction is the JSON-RPC shape of every transaction variant. Fields
// that a variant does not carry are left nil. List fields use omitzero so
// an empty list is written as [] and only a nil list is left out.
type Transaction struct {
	Hash    Felt            `json:"transaction_hash"`
	Type    TransactionType `json:"type"`
	Version hexutil.Uint64  `json:"version"`

	MaxFee    *Felt  `json:"max_fee,omitempty"`
	Signature []Felt `json:"signature,omitzero"`
	Nonce     *Felt  `json:"nonce,omitempty"`

	// invoke v1, declare
	SenderAddress *Felt  `json:"sender_address,omitempty"`
	Calldata      []Felt `json:"calldata,omitzero"`

	// invoke v0, l1 handler
	ContractAddress    *Felt `json:"contract_address,omitempty"`
	EntryPointSelector *Felt `json:"entry_point_selector,omitempty"`

	// declare, deploy, deploy account
	ClassHash           *Felt  `json:"class_hash,omitempty"`
	CompiledClassHash   *Felt  `json:"compiled_class_hash,omitempty"`
	ContractAddressSalt *Felt  `json:"contract_address_salt,omitempty"`
	ConstructorCalldata []Felt `json:"constructor_calldata,omitzero"`
}

// NewInvokeTransactionV1 builds an invoke v1 transaction. An invoke always
// carries signature and calldata, so nil lists become empty ones.
func NewInvokeTransactionV1(hash, maxFee Felt, signature []Felt, nonce, sender Felt, calldata []Felt) *Transaction {
	if signature == nil {
		signature = []Felt{}
	}
	if calldata == nil {
		calldata = []Felt{}
	}
	return &Transaction{
		Hash:          hash,
		Type:          TransactionInvoke,
		Version:       1,
		MaxFee:        &maxFee,
		Signature:     signature,
		Nonce:         &nonce,
		SenderAddress: &sender,
		Calldata:      calldata,
	}
}
