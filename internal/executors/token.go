package executors

import (
	"context"
	"fmt"
	"strings"

	"solmentions/internal/chain"
	"solmentions/internal/intent"
	"solmentions/internal/models"
)

const (
	defaultTokenDecimals = 9
	defaultTokenSupply   = 1_000_000_000 // whole tokens minted to the creator
)

// TokenExecutor uploads token metadata to a content-addressed store and then
// submits the token-creation transaction. If the upload fails nothing is
// submitted; partial on-chain state is not acceptable.
type TokenExecutor struct {
	uploader MetadataUploader
	creator  TokenCreator
}

// NewTokenExecutor creates a token-deploy executor
func NewTokenExecutor(uploader MetadataUploader, creator TokenCreator) *TokenExecutor {
	return &TokenExecutor{uploader: uploader, creator: creator}
}

func (e *TokenExecutor) Kind() intent.Kind {
	return intent.KindCreateToken
}

func (e *TokenExecutor) Execute(ctx context.Context, post *models.Post, in intent.Intent) Result {
	params := in.Token
	if params == nil {
		return Skipped("no token parameters extracted")
	}
	if params.Name == "" {
		return Skipped("token name missing")
	}

	meta := chain.TokenMetadata{
		Name:        params.Name,
		Symbol:      deriveSymbol(params.Name),
		Description: params.Description,
		Image:       params.ImageURL,
		Website:     params.Website,
		Telegram:    params.Telegram,
	}

	metadataURI, err := e.uploader.Upload(ctx, meta)
	if err != nil {
		return Errorf("metadata upload failed, token not created: %v", err)
	}

	supply := uint64(defaultTokenSupply) * pow10(defaultTokenDecimals)
	mint, txID, err := e.creator.SubmitCreateToken(ctx, supply, defaultTokenDecimals)
	if err != nil {
		return Errorf("token creation failed: %v", err)
	}

	detail := fmt.Sprintf("created token %s (%s), metadata %s", params.Name, mint, metadataURI)
	if params.InitialLiquidity > 0 {
		detail += fmt.Sprintf(", requested initial liquidity %g SOL", params.InitialLiquidity)
	}
	return Success(txID, detail)
}

// deriveSymbol builds a ticker from the token name: first word, uppercased,
// at most ten characters.
func deriveSymbol(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	symbol := strings.ToUpper(fields[0])
	if len(symbol) > 10 {
		symbol = symbol[:10]
	}
	return symbol
}

func pow10(n int) uint64 {
	out := uint64(1)
	for i := 0; i < n; i++ {
		out *= 10
	}
	return out
}
