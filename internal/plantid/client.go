// Package plantid is a thin client for the Plant.id v2 identification API.
package plantid

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrNoAPIKey is returned when identification is requested without a
// configured API key.
var ErrNoAPIKey = errors.New("plantid: no API key configured")

// Identification is the reduced result surfaced to clients. Only the
// confidence score is derived from the upstream response; the plant flag and
// details are intentionally left empty until the full mapping is settled.
type Identification struct {
	IsPlant      bool           `json:"is_plant"`
	PlantDetails map[string]any `json:"plant_details"`
	Confidence   float64        `json:"confidence"`
}

// Identifier identifies a plant from raw image bytes.
type Identifier interface {
	Identify(ctx context.Context, image []byte) (*Identification, error)
}

type identifyRequest struct {
	Images       []string `json:"images"`
	Modifiers    []string `json:"modifiers"`
	PlantDetails []string `json:"plant_details"`
}

type identifyResponse struct {
	Suggestions []struct {
		Probability float64 `json:"probability"`
	} `json:"suggestions"`
}

// Client calls the Plant.id HTTP API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Identify posts the image and returns the top suggestion's probability as a
// 0-100 confidence score.
func (c *Client) Identify(ctx context.Context, image []byte) (*Identification, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	payload := identifyRequest{
		Images:       []string{base64.StdEncoding.EncodeToString(image)},
		Modifiers:    []string{"similar_images"},
		PlantDetails: []string{"common_names", "url", "wiki_description", "taxonomy"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("plantid: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("plantid: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("plantid: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("plantid: unexpected status %d", resp.StatusCode)
	}

	var parsed identifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("plantid: decode response: %w", err)
	}

	res := &Identification{PlantDetails: map[string]any{}}
	if len(parsed.Suggestions) > 0 {
		res.Confidence = parsed.Suggestions[0].Probability * 100
	}
	return res, nil
}
