package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// JupiterClient talks to the Jupiter swap aggregator HTTP API.
type JupiterClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewJupiterClient creates a new Jupiter API client
func NewJupiterClient(baseURL string) *JupiterClient {
	if baseURL == "" {
		baseURL = "https://quote-api.jup.ag"
	}

	return &JupiterClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Quote is the aggregator's route answer. The raw body is kept so it can be
// echoed back verbatim to the swap endpoint.
type Quote struct {
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	InAmount   string `json:"inAmount"`
	OutAmount  string `json:"outAmount"`

	raw json.RawMessage
}

// swapRequest is the body for the swap-build endpoint
type swapRequest struct {
	QuoteResponse    json.RawMessage `json:"quoteResponse"`
	UserPublicKey    string          `json:"userPublicKey"`
	WrapAndUnwrapSol bool            `json:"wrapAndUnwrapSol"`
}

// swapResponse carries the unsigned transaction to submit
type swapResponse struct {
	SwapTransaction string `json:"swapTransaction"`
}

// Quote asks for the best route from inputMint to outputMint for an amount in
// the input token's base units.
func (c *JupiterClient) Quote(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int) (*Quote, error) {
	params := url.Values{}
	params.Set("inputMint", inputMint)
	params.Set("outputMint", outputMint)
	params.Set("amount", strconv.FormatUint(amount, 10))
	params.Set("slippageBps", strconv.Itoa(slippageBps))

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/v6/quote?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote failed: HTTP %d: %s", resp.StatusCode, string(body))
	}

	var quote Quote
	if err := json.Unmarshal(body, &quote); err != nil {
		return nil, fmt.Errorf("failed to parse quote: %w", err)
	}
	quote.raw = body

	return &quote, nil
}

// Swap builds an unsigned swap transaction for a previously fetched quote.
// The caller signs and submits it.
func (c *JupiterClient) Swap(ctx context.Context, quote *Quote, userPublicKey string) (string, error) {
	reqBody := swapRequest{
		QuoteResponse:    quote.raw,
		UserPublicKey:    userPublicKey,
		WrapAndUnwrapSol: true,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v6/swap", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("swap request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("swap build failed: HTTP %d: %s", resp.StatusCode, string(body))
	}

	var swap swapResponse
	if err := json.Unmarshal(body, &swap); err != nil {
		return "", fmt.Errorf("failed to parse swap response: %w", err)
	}
	if swap.SwapTransaction == "" {
		return "", fmt.Errorf("swap response carried no transaction")
	}

	return swap.SwapTransaction, nil
}
