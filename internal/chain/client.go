package chain

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	ata "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
)

// knownMints maps the token symbols the extractor recognizes to their mint
// addresses. Anything else arriving here is expected to already be a mint
// address.
var knownMints = map[string]string{
	"SOL":  "So11111111111111111111111111111111111111112",
	"USDC": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
	"USDT": "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB",
	"BONK": "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263",
	"JITO": "J1toso1uCk3RLmjorhTtrVwY9HJ7X8V9yYac6Y7kGCPn",
}

// knownDecimals pins the base-unit scale for the mints above. Getting this
// wrong changes the amount by orders of magnitude, so unknown mints are read
// from their on-chain mint account instead of assuming a scale.
var knownDecimals = map[string]uint8{
	"So11111111111111111111111111111111111111112": 9,
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": 6,
	"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB": 6,
	"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263": 5,
	"J1toso1uCk3RLmjorhTtrVwY9HJ7X8V9yYac6Y7kGCPn": 9,
}

// ResolveMint returns the mint address for a token symbol or passes a mint
// address through unchanged.
func ResolveMint(tokenOrMint string) (string, error) {
	if mint, ok := knownMints[tokenOrMint]; ok {
		return mint, nil
	}
	if _, err := solana.PublicKeyFromBase58(tokenOrMint); err == nil {
		return tokenOrMint, nil
	}
	return "", fmt.Errorf("unrecognized token %q", tokenOrMint)
}

// SolanaClient submits transactions from a single wallet identity. Calls are
// strictly sequential from the caller's side; the wallet nonce does not
// tolerate concurrent use.
type SolanaClient struct {
	rpc     *rpc.Client
	wallet  solana.PrivateKey
	jupiter *JupiterClient

	confirmRetries  int
	confirmInterval time.Duration
}

// NewSolanaClient creates a chain client from config. The wallet key is
// required; everything else has defaults.
func NewSolanaClient(config *Config) (*SolanaClient, error) {
	if config.WalletKey == "" {
		return nil, fmt.Errorf("CHAIN_WALLET_KEY is not set")
	}
	wallet, err := solana.PrivateKeyFromBase58(config.WalletKey)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet key: %w", err)
	}

	return &SolanaClient{
		rpc:             rpc.New(config.RPCURL),
		wallet:          wallet,
		jupiter:         NewJupiterClient(config.JupiterURL),
		confirmRetries:  config.ConfirmRetries,
		confirmInterval: config.ConfirmInterval,
	}, nil
}

// WalletAddress returns the public address of the submitting wallet.
func (c *SolanaClient) WalletAddress() string {
	return c.wallet.PublicKey().String()
}

// SubmitSwap routes (fromToken, toToken, amount) through the aggregator,
// signs the returned transaction and confirms it. Returns the transaction
// signature.
func (c *SolanaClient) SubmitSwap(ctx context.Context, fromToken, toToken string, amount float64) (string, error) {
	inputMint, err := ResolveMint(fromToken)
	if err != nil {
		return "", err
	}
	outputMint, err := ResolveMint(toToken)
	if err != nil {
		return "", err
	}

	// The quote amount is denominated in the input mint's base units.
	decimals, err := c.mintDecimals(ctx, inputMint)
	if err != nil {
		return "", fmt.Errorf("failed to resolve decimals for %s: %w", fromToken, err)
	}

	quote, err := c.jupiter.Quote(ctx, inputMint, outputMint, scaleToBaseUnits(amount, decimals), 50)
	if err != nil {
		return "", fmt.Errorf("swap quote failed: %w", err)
	}

	rawTx, err := c.jupiter.Swap(ctx, quote, c.wallet.PublicKey().String())
	if err != nil {
		return "", fmt.Errorf("swap build failed: %w", err)
	}

	txBytes, err := base64.StdEncoding.DecodeString(rawTx)
	if err != nil {
		return "", fmt.Errorf("failed to decode swap transaction: %w", err)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(txBytes))
	if err != nil {
		return "", fmt.Errorf("failed to parse swap transaction: %w", err)
	}

	if _, err := tx.Sign(c.signer()); err != nil {
		return "", fmt.Errorf("failed to sign swap transaction: %w", err)
	}

	return c.sendAndConfirm(ctx, tx)
}

// TransferSOL sends amount SOL to a recipient address and confirms the
// transaction.
func (c *SolanaClient) TransferSOL(ctx context.Context, toAddress string, amount float64) (string, error) {
	recipient, err := solana.PublicKeyFromBase58(toAddress)
	if err != nil {
		return "", fmt.Errorf("invalid recipient address %q: %w", toAddress, err)
	}

	lamports := uint64(amount * float64(solana.LAMPORTS_PER_SOL))

	blockhash, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("failed to fetch blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(lamports, c.wallet.PublicKey(), recipient).Build(),
		},
		blockhash.Value.Blockhash,
		solana.TransactionPayer(c.wallet.PublicKey()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to build transfer: %w", err)
	}

	if _, err := tx.Sign(c.signer()); err != nil {
		return "", fmt.Errorf("failed to sign transfer: %w", err)
	}

	return c.sendAndConfirm(ctx, tx)
}

// SubmitCreateToken creates a new mint, the wallet's associated token account
// and the initial supply in a single transaction. Everything is built before
// anything is submitted, so a failed step never leaves partial on-chain
// state. Returns the mint address and the transaction signature.
func (c *SolanaClient) SubmitCreateToken(ctx context.Context, supply uint64, decimals uint8) (string, string, error) {
	mint := solana.NewWallet()
	owner := c.wallet.PublicKey()

	rent, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, token.MINT_SIZE, rpc.CommitmentFinalized)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch rent exemption: %w", err)
	}

	assoc, _, err := solana.FindAssociatedTokenAddress(owner, mint.PublicKey())
	if err != nil {
		return "", "", fmt.Errorf("failed to derive token account: %w", err)
	}

	instructions := []solana.Instruction{
		system.NewCreateAccountInstruction(
			rent,
			token.MINT_SIZE,
			solana.TokenProgramID,
			owner,
			mint.PublicKey(),
		).Build(),
		token.NewInitializeMintInstruction(
			decimals,
			owner,
			owner,
			mint.PublicKey(),
			solana.SysVarRentPubkey,
		).Build(),
		ata.NewCreateInstruction(owner, owner, mint.PublicKey()).Build(),
		token.NewMintToInstruction(supply, mint.PublicKey(), assoc, owner, nil).Build(),
	}

	blockhash, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, blockhash.Value.Blockhash, solana.TransactionPayer(owner))
	if err != nil {
		return "", "", fmt.Errorf("failed to build token creation: %w", err)
	}

	mintKey := mint.PrivateKey
	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(owner) {
			return &c.wallet
		}
		if key.Equals(mint.PublicKey()) {
			return &mintKey
		}
		return nil
	}); err != nil {
		return "", "", fmt.Errorf("failed to sign token creation: %w", err)
	}

	sig, err := c.sendAndConfirm(ctx, tx)
	if err != nil {
		return "", "", err
	}
	return mint.PublicKey().String(), sig, nil
}

// mintDecimals returns the base-unit scale of a mint, reading the on-chain
// mint account when the mint is not one of the pinned symbols.
func (c *SolanaClient) mintDecimals(ctx context.Context, mint string) (uint8, error) {
	if d, ok := knownDecimals[mint]; ok {
		return d, nil
	}

	pk, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return 0, fmt.Errorf("invalid mint %q: %w", mint, err)
	}
	info, err := c.rpc.GetAccountInfo(ctx, pk)
	if err != nil {
		return 0, fmt.Errorf("mint account lookup failed: %w", err)
	}
	if info.Value == nil {
		return 0, fmt.Errorf("mint account %s not found", mint)
	}

	var m token.Mint
	if err := bin.NewBinDecoder(info.Value.Data.GetBinary()).Decode(&m); err != nil {
		return 0, fmt.Errorf("failed to decode mint account %s: %w", mint, err)
	}
	return m.Decimals, nil
}

// scaleToBaseUnits converts a human-readable amount to base units of a mint
// with the given decimals.
func scaleToBaseUnits(amount float64, decimals uint8) uint64 {
	scale := uint64(1)
	for i := uint8(0); i < decimals; i++ {
		scale *= 10
	}
	return uint64(math.Round(amount * float64(scale)))
}

// sendAndConfirm submits a signed transaction and polls its signature status
// until it confirms or the bounded retry budget runs out.
func (c *SolanaClient) sendAndConfirm(ctx context.Context, tx *solana.Transaction) (string, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentProcessed,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	log.Printf("Submitted transaction %s, awaiting confirmation...", sig)

	if err := c.confirm(ctx, sig); err != nil {
		// The transaction was broadcast; a confirmation timeout does not
		// mean it will never land. Reconciling that is a known gap.
		return sig.String(), fmt.Errorf("transaction %s not confirmed: %w", sig, err)
	}
	return sig.String(), nil
}

// confirm polls signature status on a fixed interval with a bounded attempt
// count.
func (c *SolanaClient) confirm(ctx context.Context, sig solana.Signature) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.confirmInterval), uint64(c.confirmRetries)),
		ctx,
	)

	return backoff.Retry(func() error {
		out, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return fmt.Errorf("status query failed: %w", err)
		}
		if len(out.Value) == 0 || out.Value[0] == nil {
			return fmt.Errorf("signature not yet observed")
		}
		status := out.Value[0]
		if status.Err != nil {
			return backoff.Permanent(fmt.Errorf("transaction failed on chain: %v", status.Err))
		}
		switch status.ConfirmationStatus {
		case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
			return nil
		default:
			return fmt.Errorf("still %s", status.ConfirmationStatus)
		}
	}, policy)
}

// signer returns the key resolver used for single-signer transactions.
func (c *SolanaClient) signer() func(key solana.PublicKey) *solana.PrivateKey {
	owner := c.wallet.PublicKey()
	return func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(owner) {
			return &c.wallet
		}
		return nil
	}
}
