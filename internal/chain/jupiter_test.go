package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJupiterQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v6/quote" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("inputMint") != "So11111111111111111111111111111111111111112" {
			t.Errorf("Unexpected inputMint %s", q.Get("inputMint"))
		}
		if q.Get("amount") != "5000000000" {
			t.Errorf("Unexpected amount %s", q.Get("amount"))
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"inputMint":  q.Get("inputMint"),
			"outputMint": q.Get("outputMint"),
			"inAmount":   q.Get("amount"),
			"outAmount":  "850000000",
			"routePlan":  []interface{}{},
		})
	}))
	defer server.Close()

	client := NewJupiterClient(server.URL)
	quote, err := client.Quote(context.Background(),
		"So11111111111111111111111111111111111111112",
		"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		5000000000, 50)
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}
	if quote.OutAmount != "850000000" {
		t.Errorf("Expected outAmount 850000000, got %s", quote.OutAmount)
	}
	if len(quote.raw) == 0 {
		t.Error("Expected raw quote body to be retained for the swap call")
	}
}

func TestJupiterQuoteHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"no route"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewJupiterClient(server.URL)
	if _, err := client.Quote(context.Background(), "a", "b", 1, 50); err == nil {
		t.Error("Expected error on HTTP 400")
	}
}

func TestJupiterSwapEchoesQuote(t *testing.T) {
	rawQuote := json.RawMessage(`{"inputMint":"x","outputMint":"y","inAmount":"1","outAmount":"2"}`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v6/swap" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var req struct {
			QuoteResponse json.RawMessage `json:"quoteResponse"`
			UserPublicKey string          `json:"userPublicKey"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode swap request: %v", err)
		}
		if string(req.QuoteResponse) != string(rawQuote) {
			t.Errorf("Quote not echoed verbatim: %s", req.QuoteResponse)
		}
		if req.UserPublicKey != "WalletPubkey111" {
			t.Errorf("Unexpected user public key %s", req.UserPublicKey)
		}

		json.NewEncoder(w).Encode(map[string]string{"swapTransaction": "base64tx=="})
	}))
	defer server.Close()

	client := NewJupiterClient(server.URL)
	quote := &Quote{raw: rawQuote}

	tx, err := client.Swap(context.Background(), quote, "WalletPubkey111")
	if err != nil {
		t.Fatalf("Swap failed: %v", err)
	}
	if tx != "base64tx==" {
		t.Errorf("Expected transaction from response, got %q", tx)
	}
}

func TestJupiterSwapEmptyTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer server.Close()

	client := NewJupiterClient(server.URL)
	if _, err := client.Swap(context.Background(), &Quote{raw: json.RawMessage(`{}`)}, "pk"); err == nil {
		t.Error("Expected error when response carries no transaction")
	}
}
