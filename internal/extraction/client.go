// Package extraction calls the document extraction service, which reads the
// QR payload printed on an uploaded land document and returns structured
// property metadata.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"land-registry-workflow/internal/domain"
	"land-registry-workflow/internal/observability"
)

// DefaultTimeout bounds one extraction request.
const DefaultTimeout = 30 * time.Second

// Client is an HTTP client for the extraction service.
type Client struct {
	baseURL string
	client  *http.Client
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates an extraction client for the given service base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// extractResponse is the service's success body:
// {"data": {"property_details": {"location": ..., "land_area": ...}}}
type extractResponse struct {
	Data struct {
		PropertyDetails struct {
			Location string `json:"location"`
			LandArea string `json:"land_area"`
		} `json:"property_details"`
	} `json:"data"`
	Error string `json:"error"`
}

// Extract uploads a document and returns its extracted metadata. Any
// transport failure, non-200 status, or response without a location fails
// with domain.ErrExtractionFailed carrying the service's reason.
func (c *Client) Extract(ctx context.Context, filename string, document io.Reader) (meta *domain.ExtractedMetadata, err error) {
	start := time.Now()
	defer func() {
		observability.DefaultMetrics.CollaboratorLatency.WithLabelValues("extraction", "extract").Observe(time.Since(start).Seconds())
		if err != nil {
			observability.DefaultMetrics.CollaboratorErrors.WithLabelValues("extraction", "extract").Inc()
		}
	}()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("%w: build form: %s", domain.ErrExtractionFailed, err)
	}
	if _, err := io.Copy(part, document); err != nil {
		return nil, fmt.Errorf("%w: read document: %s", domain.ErrExtractionFailed, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%w: finish form: %s", domain.ErrExtractionFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract-qr", &body)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %s", domain.ErrExtractionFailed, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrExtractionFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %s", domain.ErrExtractionFailed, err)
	}

	var parsed extractResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: unexpected response (status %d)", domain.ErrExtractionFailed, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		reason := parsed.Error
		if reason == "" {
			reason = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrExtractionFailed, reason)
	}

	meta = &domain.ExtractedMetadata{
		Location: parsed.Data.PropertyDetails.Location,
		LandArea: parsed.Data.PropertyDetails.LandArea,
	}
	if strings.TrimSpace(meta.Location) == "" {
		return nil, fmt.Errorf("%w: no property location in document", domain.ErrExtractionFailed)
	}
	return meta, nil
}
