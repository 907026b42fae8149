package executors

import (
	"context"
	"fmt"

	"solmentions/internal/intent"
	"solmentions/internal/models"
)

// SwapExecutor submits a DEX swap, or a plain transfer when the post names a
// recipient wallet instead of a target token.
type SwapExecutor struct {
	swapper     Swapper
	transferrer Transferrer
}

// NewSwapExecutor creates a swap executor
func NewSwapExecutor(swapper Swapper, transferrer Transferrer) *SwapExecutor {
	return &SwapExecutor{swapper: swapper, transferrer: transferrer}
}

func (e *SwapExecutor) Kind() intent.Kind {
	return intent.KindSwap
}

func (e *SwapExecutor) Execute(ctx context.Context, post *models.Post, in intent.Intent) Result {
	params := in.Swap
	if params == nil {
		return Skipped("no swap parameters extracted")
	}
	if params.Amount <= 0 {
		return Skipped("no usable amount extracted")
	}

	// A named wallet wins over a target token: "send 5 SOL to <addr>" is a
	// transfer even when another token symbol appears elsewhere in the text.
	if params.Recipient != "" {
		txID, err := e.transferrer.TransferSOL(ctx, params.Recipient, params.Amount)
		if err != nil {
			return Errorf("transfer failed: %v", err)
		}
		return Success(txID, fmt.Sprintf("transferred %g %s to %s", params.Amount, params.FromToken, params.Recipient))
	}

	if params.ToToken == "" {
		return Skipped("no swap destination extracted")
	}
	if params.ToToken == params.FromToken {
		return Skipped("swap source and destination are identical")
	}

	txID, err := e.swapper.SubmitSwap(ctx, params.FromToken, params.ToToken, params.Amount)
	if err != nil {
		return Errorf("swap failed: %v", err)
	}
	return Success(txID, fmt.Sprintf("swapped %g %s for %s", params.Amount, params.FromToken, params.ToToken))
}
