package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TokenMetadata is the off-chain metadata document pinned for a new token.
type TokenMetadata struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
	Website     string `json:"website,omitempty"`
	Telegram    string `json:"telegram,omitempty"`
}

// MetadataClient uploads token metadata to a content-addressed pinning
// service. The upload must succeed before any token transaction is built.
type MetadataClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewMetadataClient creates a pinning service client
func NewMetadataClient(baseURL, apiKey string) *MetadataClient {
	if baseURL == "" {
		baseURL = "https://api.pinata.cloud"
	}

	return &MetadataClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// pinResponse is the pinning service's answer
type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

// Upload pins the metadata document and returns its content-addressed URI.
func (c *MetadataClient) Upload(ctx context.Context, meta TokenMetadata) (string, error) {
	jsonBody, err := json.Marshal(map[string]interface{}{
		"pinataContent": meta,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/pinning/pinJSONToIPFS", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("metadata upload failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("metadata upload failed: HTTP %d: %s", resp.StatusCode, string(body))
	}

	var pin pinResponse
	if err := json.Unmarshal(body, &pin); err != nil {
		return "", fmt.Errorf("failed to parse pin response: %w", err)
	}
	if pin.IpfsHash == "" {
		return "", fmt.Errorf("pin response carried no hash")
	}

	return "ipfs://" + pin.IpfsHash, nil
}
