// Package executors contains one executor per action kind. Each wraps exactly
// one external side effect and reports an outcome; none of them ever touches
// the post's idempotency flag.
package executors

import (
	"context"
	"fmt"

	"solmentions/internal/intent"
	"solmentions/internal/models"

	"solmentions/internal/chain"
)

// Status classifies an executor outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// Result is the outcome of one executor invocation.
type Result struct {
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
	TxID   string `json:"txid,omitempty"`
}

// Success builds a success result carrying a transaction ID.
func Success(txID, detail string) Result {
	return Result{Status: StatusSuccess, TxID: txID, Detail: detail}
}

// Skipped builds a skipped result. Skipped posts are not marked performed.
func Skipped(reason string) Result {
	return Result{Status: StatusSkipped, Detail: reason}
}

// Errorf builds an error result. The post stays eligible for a retry.
func Errorf(format string, args ...interface{}) Result {
	return Result{Status: StatusError, Detail: fmt.Sprintf(format, args...)}
}

// Executor performs the side effect for one intent kind.
type Executor interface {
	Kind() intent.Kind
	Execute(ctx context.Context, post *models.Post, in intent.Intent) Result
}

// Swapper submits a swap and returns the transaction signature.
type Swapper interface {
	SubmitSwap(ctx context.Context, fromToken, toToken string, amount float64) (string, error)
}

// Transferrer sends SOL to an address and returns the transaction signature.
type Transferrer interface {
	TransferSOL(ctx context.Context, toAddress string, amount float64) (string, error)
}

// TokenCreator submits a token-creation transaction and returns the new mint
// address plus the transaction signature.
type TokenCreator interface {
	SubmitCreateToken(ctx context.Context, supply uint64, decimals uint8) (string, string, error)
}

// MetadataUploader pins a metadata document and returns its URI.
type MetadataUploader interface {
	Upload(ctx context.Context, meta chain.TokenMetadata) (string, error)
}
