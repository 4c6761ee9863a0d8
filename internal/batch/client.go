package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/okian/ratecard/internal/domain/normalize"
	"github.com/okian/ratecard/internal/domain/offer"
	"github.com/okian/ratecard/internal/domain/valuation"
)

// RequestIDHeader carries the per-offer correlation id.
const RequestIDHeader = "X-Request-ID"

// Client posts offers to the evaluation endpoint with retries.
type Client struct {
	http    *retryablehttp.Client
	baseURL string
}

// NewClient creates a retrying client for baseURL.
func NewClient(cfg Config) *Client {
	cfg.withDefaults()
	c := retryablehttp.NewClient()
	c.RetryMax = cfg.RetryMax
	c.RetryWaitMin = cfg.RetryWaitMin
	c.RetryWaitMax = cfg.RetryWaitMax
	c.HTTPClient.Timeout = cfg.Timeout
	c.Logger = nil
	return &Client{http: c, baseURL: strings.TrimRight(cfg.BaseURL, "/")}
}

// Health checks that the service answers /healthz.
func (c *Client) Health(ctx context.Context) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

type evaluationResponse struct {
	Valuation  valuation.Result `json:"valuation"`
	Evaluation offer.Evaluation `json:"evaluation"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Evaluate posts one offer and returns the server's verdict.
func (c *Client) Evaluate(ctx context.Context, raw normalize.Raw) (Result, error) {
	res := Result{RequestID: uuid.NewString()}

	body, err := json.Marshal(raw)
	if err != nil {
		return res, fmt.Errorf("marshal offer: %w", err)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/evaluations", bytes.NewReader(body))
	if err != nil {
		return res, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, res.RequestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return res, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	res.Status = resp.StatusCode

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return res, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if json.Unmarshal(payload, &e) == nil && e.Message != "" {
			return res, fmt.Errorf("status %d: %s", resp.StatusCode, e.Message)
		}
		return res, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var out evaluationResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return res, fmt.Errorf("decode response: %w", err)
	}
	res.Verdict = out.Evaluation.Verdict
	res.Offer = out.Evaluation.Offer
	res.FairValue = out.Evaluation.FairValue
	res.FairMinimum = out.Evaluation.FairMinimum
	res.FairMaximum = out.Evaluation.FairMaximum
	res.Ratio = out.Evaluation.Ratio
	res.SuggestedCounter = out.Evaluation.SuggestedCounter
	return res, nil
}
