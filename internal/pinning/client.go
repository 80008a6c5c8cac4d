// Package pinning uploads land documents to a content-addressable pinning
// service and renders public gateway URLs for retrieval. API credentials are
// configuration, never compiled-in constants.
package pinning

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

// DefaultTimeout bounds one pin upload.
const DefaultTimeout = 60 * time.Second

// Credentials is the static API key pair the pinning service authenticates.
type Credentials struct {
	APIKey    string
	APISecret string
}

// Client is an HTTP client for the pinning service.
type Client struct {
	baseURL    string
	gatewayURL string
	creds      Credentials
	client     *http.Client
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a pinning client. gatewayURL is the public gateway base
// used to build retrieval URLs, e.g. "https://gateway.pinata.cloud".
func NewClient(baseURL, gatewayURL string, creds Credentials, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		gatewayURL: strings.TrimRight(gatewayURL, "/"),
		creds:      creds,
		client:     &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// pinResponse is the service's success body.
type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

// Pin uploads a document and returns its content address. Failures surface
// as domain.ErrPinningFailed; a returned address that is not a well-formed
// content address is treated the same way.
func (c *Client) Pin(ctx context.Context, filename string, document io.Reader) (cid string, err error) {
	start := time.Now()
	defer func() {
		observability.DefaultMetrics.CollaboratorLatency.WithLabelValues("pinning", "pin").Observe(time.Since(start).Seconds())
		if err != nil {
			observability.DefaultMetrics.CollaboratorErrors.WithLabelValues("pinning", "pin").Inc()
		}
	}()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("%w: build form: %s", domain.ErrPinningFailed, err)
	}
	if _, err := io.Copy(part, document); err != nil {
		return "", fmt.Errorf("%w: read document: %s", domain.ErrPinningFailed, err)
	}

	meta, err := json.Marshal(map[string]string{"name": filename})
	if err != nil {
		return "", fmt.Errorf("%w: build metadata: %s", domain.ErrPinningFailed, err)
	}
	if err := mw.WriteField("pinataMetadata", string(meta)); err != nil {
		return "", fmt.Errorf("%w: write metadata: %s", domain.ErrPinningFailed, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("%w: finish form: %s", domain.ErrPinningFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pinning/pinFileToIPFS", &body)
	if err != nil {
		return "", fmt.Errorf("%w: create request: %s", domain.ErrPinningFailed, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("pinata_api_key", c.creds.APIKey)
	req.Header.Set("pinata_secret_api_key", c.creds.APISecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrPinningFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %s", domain.ErrPinningFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", domain.ErrPinningFailed, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed pinResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: unexpected response", domain.ErrPinningFailed)
	}

	if err := ValidateCID(parsed.IpfsHash); err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrPinningFailed, err)
	}
	return parsed.IpfsHash, nil
}

// GatewayURL builds the public retrieval URL for a content address.
func (c *Client) GatewayURL(cid string) string {
	return c.gatewayURL + "/ipfs/" + cid
}
