package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const ocrPath = "/v1/ocr"

// MistralClient implements Client against the Mistral OCR REST API.
type MistralClient struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// Config contains Mistral client configuration
type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// NewMistralClient creates a client for the given endpoint and credential.
func NewMistralClient(cfg Config) (*MistralClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint cannot be empty")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key cannot be empty")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	return &MistralClient{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: timeout},
	}, nil
}

type ocrRequest struct {
	Model              string      `json:"model"`
	Document           ocrDocument `json:"document"`
	IncludeImageBase64 bool        `json:"include_image_base64"`
}

type ocrDocument struct {
	Type        string `json:"type"`
	DocumentURL string `json:"document_url"`
}

// Process sends one document for extraction and returns its pages.
func (c *MistralClient) Process(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(ocrRequest{
		Model: req.Model,
		Document: ocrDocument{
			Type:        "document_url",
			DocumentURL: req.DocumentURL,
		},
		IncludeImageBase64: req.IncludeImageBase64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+ocrPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("OCR request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("OCR service returned %s: %s", resp.Status, strings.TrimSpace(string(excerpt)))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode OCR response: %w", err)
	}

	return &out, nil
}
