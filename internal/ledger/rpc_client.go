package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync/atomic"
	"time"

	"land-registry-workflow/internal/domain"
	"land-registry-workflow/internal/observability"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// HTTPClient implements Ledger over HTTP JSON-RPC 2.0.
//
// Read calls retry transport failures with exponential backoff. Write calls
// (registerLand, buyLand) never retry: a transaction whose fate is unknown
// must not be resubmitted, since that risks a duplicate-intent transaction.
type HTTPClient struct {
	endpoint    string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	requestID   atomic.Uint64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts for read calls.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates a new registry RPC client.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time interface check.
var _ Ledger = (*HTTPClient)(nil)

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// call performs a JSON-RPC call. Transport failures are retried up to
// maxRetries times with exponential backoff; RPC-level errors are returned
// immediately. Write calls pass retry=false and get exactly one attempt.
func (c *HTTPClient) call(ctx context.Context, method string, params []interface{}, result interface{}, retry bool) (err error) {
	start := time.Now()
	defer func() {
		observability.DefaultMetrics.CollaboratorLatency.WithLabelValues("ledger", method).Observe(time.Since(start).Seconds())
		if err != nil {
			observability.DefaultMetrics.CollaboratorErrors.WithLabelValues("ledger", method).Inc()
		}
	}()

	reqID := c.requestID.Add(1)
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	maxRetries := c.maxRetries
	if !retry {
		maxRetries = 0
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		// Handle rate limiting
		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(respBody, &rpcResp); err != nil {
			lastErr = fmt.Errorf("unmarshal response: %w", err)
			continue
		}

		if rpcResp.Error != nil {
			// RPC errors are contract verdicts, never retried
			return rpcResp.Error
		}

		if result != nil && rpcResp.Result != nil {
			if err := json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}

		return nil
	}

	if maxRetries == 0 {
		return lastErr
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// LandCount returns the number of registered land records.
func (c *HTTPClient) LandCount(ctx context.Context) (int64, error) {
	var result int64
	if err := c.call(ctx, "registry_landCount", nil, &result, true); err != nil {
		return 0, fmt.Errorf("land count: %w", err)
	}
	return result, nil
}

// GetLand retrieves a record by ID.
func (c *HTTPClient) GetLand(ctx context.Context, id int64) (*domain.LandRecord, error) {
	var result getLandResult
	if err := c.call(ctx, "registry_getLand", []interface{}{id}, &result, true); err != nil {
		return nil, fmt.Errorf("get land %d: %w", id, err)
	}
	return result.toRecord(id)
}

// RegistrationFee returns the current registration fee in minor units.
func (c *HTTPClient) RegistrationFee(ctx context.Context) (*big.Int, error) {
	var result string
	if err := c.call(ctx, "registry_registrationFee", nil, &result, true); err != nil {
		return nil, fmt.Errorf("registration fee: %w", err)
	}
	fee, err := parseMinorUnits(result)
	if err != nil {
		return nil, fmt.Errorf("registration fee: %w", err)
	}
	return fee, nil
}

// RegisterLand submits a registration transaction paid with the registration
// fee and returns the new record ID.
func (c *HTTPClient) RegisterLand(ctx context.Context, reg Registration) (int64, error) {
	params := []interface{}{registerLandParams{
		From:          reg.From,
		Location:      reg.Location,
		Price:         minorUnitsString(reg.Price),
		PricePerToken: minorUnitsString(reg.PricePerToken),
		DocumentRef:   reg.DocumentRef,
		TokenCount:    reg.TokenCount,
		Fee:           minorUnitsString(reg.Fee),
	}}

	var result registerLandResult
	if err := c.call(ctx, "registry_registerLand", params, &result, false); err != nil {
		return 0, fmt.Errorf("%w: %s", domain.ErrLedgerRejected, err)
	}
	if result.LandID <= 0 {
		return 0, fmt.Errorf("%w: ledger returned invalid land id %d", domain.ErrLedgerRejected, result.LandID)
	}
	return result.LandID, nil
}

// BuyLand submits a purchase transaction paid with the computed value.
func (c *HTTPClient) BuyLand(ctx context.Context, p Purchase) error {
	params := []interface{}{buyLandParams{
		From:        p.From,
		LandID:      p.LandID,
		TokensToBuy: p.TokensToBuy,
		Value:       minorUnitsString(p.Value),
	}}

	if err := c.call(ctx, "registry_buyLand", params, nil, false); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrPurchaseRejected, err)
	}
	return nil
}
