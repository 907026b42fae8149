package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMetadataUpload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pinning/pinJSONToIPFS" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Unexpected authorization header %q", auth)
		}

		var body struct {
			PinataContent TokenMetadata `json:"pinataContent"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode upload body: %v", err)
		}
		if body.PinataContent.Name != "Moon Cat" || body.PinataContent.Symbol != "MOON" {
			t.Errorf("Unexpected metadata: %+v", body.PinataContent)
		}

		json.NewEncoder(w).Encode(map[string]string{"IpfsHash": "QmTestHash"})
	}))
	defer server.Close()

	client := NewMetadataClient(server.URL, "test-key")
	uri, err := client.Upload(context.Background(), TokenMetadata{
		Name:   "Moon Cat",
		Symbol: "MOON",
	})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if uri != "ipfs://QmTestHash" {
		t.Errorf("Expected content-addressed URI, got %q", uri)
	}
}

func TestMetadataUploadFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		}},
		{"empty hash", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewMetadataClient(server.URL, "")
			if _, err := client.Upload(context.Background(), TokenMetadata{Name: "x"}); err == nil {
				t.Error("Expected upload to fail")
			}
		})
	}
}

func TestResolveMint(t *testing.T) {
	tests := []struct {
		symbol  string
		want    string
		wantErr bool
	}{
		{"SOL", "So11111111111111111111111111111111111111112", false},
		{"USDC", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", false},
		{"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", false},
		{"DOESNOTEXIST", "", true},
	}

	for _, tt := range tests {
		got, err := ResolveMint(tt.symbol)
		if (err != nil) != tt.wantErr {
			t.Errorf("ResolveMint(%q) error = %v, wantErr %v", tt.symbol, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ResolveMint(%q) = %s, want %s", tt.symbol, got, tt.want)
		}
	}
}
