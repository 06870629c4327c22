// Package datto provides a read-only client for the Datto BCDR device API.
//
// # Operations
//
// - Ping: connectivity probe, run once before a check pass
// - ListDevices: paginated fetch of every appliance on the account
// - GetAssetDetails: protected assets behind a single appliance
package datto

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the production BCDR device endpoint.
const DefaultBaseURL = "https://api.datto.com/v1/bcdr/device"

// Config holds configuration for the API client.
type Config struct {
	BaseURL    string        // Device listing endpoint (default: DefaultBaseURL)
	Username   string        // Basic auth user (API public key)
	Password   string        // Basic auth password (API secret key)
	Timeout    time.Duration // HTTP timeout (default: 30s)
	RateLimit  int           // Requests per minute (default: 60)
	HTTPClient *http.Client  // Optional, mainly for tests
}

// Client is a Datto BCDR device API client.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	username    string
	password    string
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// APIError is the vendor's error envelope, returned with a 200 in place of
// the expected payload. Any occurrence is fatal to the run.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("datto API error %d: %s", e.Code, e.Message)
}

// NewClient creates a new API client. No network activity happens here;
// call Ping before relying on the credentials.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	rateLimit := cfg.RateLimit
	if rateLimit == 0 {
		rateLimit = 60 // 60 requests per minute = 1 per second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  httpClient,
		username:    cfg.Username,
		password:    cfg.Password,
		rateLimiter: rate.NewLimiter(rate.Limit(float64(rateLimit)/60.0), 1),
		logger:      logger.With("component", "datto_client"),
	}
}

// get performs a GET against the API and returns the raw body after
// checking the HTTP status and the error envelope.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("API request", "url", rawURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// Error responses still carry the envelope when the API produced them.
		if apiErr := decodeEnvelope(body); apiErr != nil {
			return nil, apiErr
		}
		return nil, fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	if apiErr := decodeEnvelope(body); apiErr != nil {
		return nil, apiErr
	}

	return body, nil
}

// decodeEnvelope returns an *APIError if body is the vendor error envelope.
func decodeEnvelope(body []byte) *APIError {
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "{") {
		return nil
	}
	var envelope APIError
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}
	if envelope.Code != 0 && envelope.Message != "" {
		return &envelope
	}
	return nil
}

// Ping probes the API once to verify connectivity and credentials.
// A failure here should abort the run before any evaluation starts.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.get(ctx, c.baseURL); err != nil {
		return fmt.Errorf("connectivity probe: %w", err)
	}
	c.logger.Debug("connectivity probe ok")
	return nil
}

// devicesPage is one page of the device listing.
type devicesPage struct {
	Pagination struct {
		Page       int `json:"page"`
		PerPage    int `json:"perPage"`
		TotalPages int `json:"totalPages"`
	} `json:"pagination"`
	Items []Device `json:"items"`
}

// ListDevices fetches every device on the account, following all result
// pages, and returns them sorted case-insensitively by name. The page size
// is fixed by the server.
func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	start := time.Now()

	first, err := c.fetchPage(ctx, 1)
	if err != nil {
		return nil, err
	}

	devices := first.Items
	for page := 2; page <= first.Pagination.TotalPages; page++ {
		p, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		devices = append(devices, p.Items...)
	}

	sort.SliceStable(devices, func(i, j int) bool {
		return strings.ToUpper(devices[i].Name) < strings.ToUpper(devices[j].Name)
	})

	c.logger.Info("fetched devices",
		"count", len(devices),
		"pages", first.Pagination.TotalPages,
		"duration", time.Since(start),
	)
	return devices, nil
}

func (c *Client) fetchPage(ctx context.Context, page int) (*devicesPage, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	q := u.Query()
	q.Set("_page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	body, err := c.get(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("fetch devices page %d: %w", page, err)
	}

	var p devicesPage
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("unmarshal devices page %d: %w", page, err)
	}
	return &p, nil
}

// GetAssetDetails fetches the protected assets behind one device.
// The server documents no pagination for this endpoint; a single
// response is assumed.
func (c *Client) GetAssetDetails(ctx context.Context, serialNumber string) ([]Asset, error) {
	body, err := c.get(ctx, c.baseURL+"/"+url.PathEscape(serialNumber)+"/asset")
	if err != nil {
		return nil, fmt.Errorf("fetch assets for %s: %w", serialNumber, err)
	}

	var assets []Asset
	if err := json.Unmarshal(body, &assets); err != nil {
		return nil, fmt.Errorf("unmarshal assets for %s: %w", serialNumber, err)
	}

	c.logger.Debug("fetched assets", "serial", serialNumber, "count", len(assets))
	return assets, nil
}
