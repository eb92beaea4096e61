// Package mempool is a thin client for the mempool.space fee estimation
// API, used as a read-only fee oracle.
package mempool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	BaseURL string
	client  *http.Client
}

// NewClient builds a client against a mempool.space compatible API. The
// timeout is mandatory: the oracle is a best-effort collaborator and must
// never stall transaction creation.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://mempool.space"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// RecommendedFees are fee rates in sat/vB as reported by the oracle.
type RecommendedFees struct {
	FastestFee  int64 `json:"fastestFee"`
	HalfHourFee int64 `json:"halfHourFee"`
	HourFee     int64 `json:"hourFee"`
	EconomyFee  int64 `json:"economyFee"`
	MinimumFee  int64 `json:"minimumFee"`
}

func (c *Client) GetRecommendedFees(ctx context.Context) (*RecommendedFees, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/v1/fees/recommended", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mempool: recommended fees returned %d: %s", resp.StatusCode, string(body))
	}
	var out RecommendedFees
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("mempool: decode recommended fees: %w", err)
	}
	return &out, nil
}
