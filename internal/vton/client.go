// Package vton wraps the external try-on image generation provider. The
// provider is modeled as a single Generator capability with two
// implementations: a network-free mock with simulated latency and a live
// HTTP client. The mode is chosen once at construction, never inside
// business logic.
package vton

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PlaceholderResultURL is the composite returned by the mock generator.
const PlaceholderResultURL = "https://via.placeholder.com/400x600.png?text=VTON+Result"

// requestTimeout bounds the live provider call. Generation regularly takes
// tens of seconds on serverless GPUs.
const requestTimeout = 90 * time.Second

// ErrMissingAPIKey is returned by NewClient when live mode is requested
// without a provider credential.
var ErrMissingAPIKey = errors.New("provider API key is required when mock mode is disabled")

// Generator produces a composite try-on image URL from an avatar and a
// garment image.
type Generator interface {
	Generate(ctx context.Context, avatarURL, garmentURL, category string) (string, error)
}

// MockClient simulates generation latency and returns a fixed placeholder
// URL. It never touches the network.
type MockClient struct {
	Delay time.Duration
}

// NewMockClient creates a mock generator with the default simulated delay.
func NewMockClient() *MockClient {
	return &MockClient{Delay: 2 * time.Second}
}

// Generate waits for the simulated delay and returns the placeholder URL.
func (m *MockClient) Generate(ctx context.Context, avatarURL, garmentURL, category string) (string, error) {
	select {
	case <-time.After(m.Delay):
		return PlaceholderResultURL, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Client calls the real provider over HTTP.
type Client struct {
	apiURL       string
	apiKey       string
	modelVersion string
	httpClient   *http.Client
}

// NewClient creates a live generator. It fails fast when the credential is
// absent so misconfiguration surfaces at startup, not on the first request.
func NewClient(apiURL, apiKey, modelVersion string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &Client{
		apiURL:       apiURL,
		apiKey:       apiKey,
		modelVersion: modelVersion,
		httpClient:   &http.Client{Timeout: requestTimeout},
	}, nil
}

type generateRequest struct {
	Version string        `json:"version"`
	Input   generateInput `json:"input"`
}

type generateInput struct {
	HumanImage string `json:"human_image"`
	GarmImage  string `json:"garm_image"`
	Category   string `json:"category"`
	GarmentDes string `json:"garment_des"`
}

// Generate issues one provider call and interprets its output field. There
// are no retries; the caller treats any failure as terminal.
func (c *Client) Generate(ctx context.Context, avatarURL, garmentURL, category string) (string, error) {
	payload := generateRequest{
		Version: c.modelVersion,
		Input: generateInput{
			HumanImage: avatarURL,
			GarmImage:  garmentURL,
			Category:   category,
			GarmentDes: "a piece of clothing",
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build generation request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("generation provider returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var parsed struct {
		Output json.RawMessage `json:"output"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode provider response: %w", err)
	}
	return parseOutput(parsed.Output)
}

// parseOutput accepts the two shapes providers return for the output field:
// a plain URL string, or an ordered list whose last element is the final
// composite. Anything else is a hard failure.
func parseOutput(raw json.RawMessage) (string, error) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString, nil
	}

	var asList []any
	if err := json.Unmarshal(raw, &asList); err == nil && len(asList) > 0 {
		return fmt.Sprint(asList[len(asList)-1]), nil
	}

	return "", errors.New("unexpected generation provider response payload")
}
