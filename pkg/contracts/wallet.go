package contracts

import (
	"context"
	"time"
)

// Wallet is the user-gated signing flow for state-changing calls.
type Wallet interface {
	// RequestTransaction presents the call to the user and blocks until they
	// approve or reject it. There is no timeout; only ctx ends the wait early.
	// A rejection is reported as an error satisfying errors.IsCancelled.
	// On approval the wallet either broadcasts the transaction itself and
	// returns its id, or returns the signed transaction for the caller to
	// broadcast.
	RequestTransaction(ctx context.Context, req TxRequest) (*TxResponse, error)
}

// SessionReader exposes the signed-in address per network.
type SessionReader interface {
	// Address returns the signed-in address for network ("mainnet" or
	// "testnet"), or false when nobody is signed in.
	Address(network string) (string, bool)
}

// TxRequest is what the wallet is asked to sign.
type TxRequest struct {
	Network           string            `json:"network"`
	NetworkID         uint32            `json:"network_id"`
	NodeURL           string            `json:"node_url"`
	ContractAddress   string            `json:"contract_address"`
	ContractName      string            `json:"contract_name"`
	FunctionName      string            `json:"function_name"`
	FunctionArgs      []string          `json:"function_args"`
	PostConditions    []PostCondition   `json:"post_conditions,omitempty"`
	PostConditionMode PostConditionMode `json:"post_condition_mode"`
	Sender            string            `json:"stx_address,omitempty"`
}

// TxResponse is the wallet's answer to an approved request.
type TxResponse struct {
	TxID  string `json:"txId,omitempty"`
	TxRaw []byte `json:"txRaw,omitempty"`
}

// Status is the outcome of a submitted call.
type Status int

const (
	StatusBroadcast Status = iota
	StatusCancelled
)

func (s Status) String() string {
	if s == StatusBroadcast {
		return "broadcast"
	}
	return "cancelled"
}

// Receipt confirms a transaction was accepted into the mempool. It says
// nothing about whether the transaction was mined or succeeded.
type Receipt struct {
	TxID        string    `json:"txid"`
	Contract    string    `json:"contract"`
	Function    string    `json:"function"`
	Network     string    `json:"network"`
	ExplorerURL string    `json:"explorer_url,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Result is either a broadcast receipt or a cancellation.
type Result struct {
	Status  Status   `json:"status"`
	Receipt *Receipt `json:"receipt,omitempty"`
}

// Callbacks is the callback form of a submitted call. Exactly one of them
// runs, once, unless Submit returns an error.
type Callbacks struct {
	OnResult func(Receipt)
	OnCancel func()
}
