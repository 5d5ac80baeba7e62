// Package cartwise is a Go client for the Cartwise recommendation API.
package cartwise

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// ClientOptions configures the API client.
type ClientOptions struct {
	// BaseURL is the base URL of the recommendation service
	// (default: "http://localhost:8080"). Do not include /v1.
	BaseURL string
	// APIKey is the bearer token for the protected endpoints.
	APIKey string
	// RetryMax is the maximum number of retries (default: 3)
	RetryMax int
	// Timeout is the HTTP client timeout (default: 30 seconds)
	Timeout time.Duration
}

// Client is the Cartwise API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *retryablehttp.Client
}

// NewClient creates an API client against a local service with default settings.
func NewClient(apiKey string) *Client {
	return NewClientWithOptions(ClientOptions{APIKey: apiKey})
}

// NewClientWithBaseURL creates an API client with a custom base URL.
func NewClientWithBaseURL(baseURL, apiKey string) *Client {
	return NewClientWithOptions(ClientOptions{APIKey: apiKey, BaseURL: baseURL})
}

// NewClientWithOptions creates an API client with custom options.
func NewClientWithOptions(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "http://localhost:8080"
	}

	// Normalize base URL - remove trailing slash and any /v1 suffix
	opts.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")
	opts.BaseURL = strings.TrimSuffix(opts.BaseURL, "/v1")

	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RetryMax == 0 {
		opts.RetryMax = 3
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.RetryMax
	retryClient.HTTPClient.Timeout = opts.Timeout
	retryClient.Logger = nil // Disable logging by default

	return &Client{
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		httpClient: retryClient,
	}
}

// v1URL returns the versioned API base URL.
func (c *Client) v1URL() string {
	return c.baseURL + "/v1"
}

// do executes one API call and decodes the response body into out when the
// status matches wantStatus. A nil out discards the body.
func (c *Client) do(method, reqURL string, in, out any, wantStatus int) error {
	var payload io.Reader
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = bytes.NewReader(body)
	}

	req, err := retryablehttp.NewRequest(method, reqURL, payload)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("Failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != wantStatus {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			slog.Error("Failed to read error response body", "error", err)
		}
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

// Recommend returns ranked recommendations for a natural language query.
func (c *Client) Recommend(req *RecommendRequest) (*RecommendationResponse, error) {
	if req == nil || req.Query == "" {
		return nil, fmt.Errorf("query is required")
	}

	var resp RecommendationResponse
	if err := c.do("POST", c.v1URL()+"/recommendations", req, &resp, http.StatusOK); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Personalized returns recommendations derived from a user's behavior profile
// and session signals, without a query.
func (c *Client) Personalized(req *PersonalizedRequest) (*RecommendationResponse, error) {
	if req == nil || req.UserID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	var resp RecommendationResponse
	if err := c.do("POST", c.v1URL()+"/recommendations/personalized", req, &resp, http.StatusOK); err != nil {
		return nil, err
	}

	return &resp, nil
}

// RecordFeedback submits one interaction event. The service accepts the event
// asynchronously; a nil error means it was queued, not yet applied.
func (c *Client) RecordFeedback(req *FeedbackRequest) error {
	if req == nil {
		return fmt.Errorf("feedback request is required")
	}

	return c.do("POST", c.v1URL()+"/feedback", req, nil, http.StatusAccepted)
}

// GetProfile retrieves a user's behavior profile snapshot.
func (c *Client) GetProfile(userID string) (*BehaviorProfile, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	var profile BehaviorProfile
	reqURL := fmt.Sprintf("%s/profiles/%s", c.v1URL(), url.PathEscape(userID))
	if err := c.do("GET", reqURL, nil, &profile, http.StatusOK); err != nil {
		return nil, err
	}

	return &profile, nil
}

// GetAnalytics retrieves system-wide interaction and catalog analytics.
func (c *Client) GetAnalytics() (*Analytics, error) {
	var analytics Analytics
	if err := c.do("GET", c.v1URL()+"/analytics", nil, &analytics, http.StatusOK); err != nil {
		return nil, err
	}

	return &analytics, nil
}

type upsertProductsRequest struct {
	Products []UpsertProduct `json:"products"`
}

type upsertProductsResponse struct {
	Indexed int `json:"indexed"`
}

// UpsertProducts indexes a batch of products (max 100 per call) and returns
// how many were indexed.
func (c *Client) UpsertProducts(products []UpsertProduct) (int, error) {
	if len(products) == 0 {
		return 0, fmt.Errorf("at least one product is required")
	}

	var resp upsertProductsResponse
	req := upsertProductsRequest{Products: products}
	if err := c.do("POST", c.v1URL()+"/products", req, &resp, http.StatusOK); err != nil {
		return 0, err
	}

	return resp.Indexed, nil
}

// DeleteProduct removes a product from the index.
func (c *Client) DeleteProduct(id string) error {
	if id == "" {
		return fmt.Errorf("product id is required")
	}

	reqURL := fmt.Sprintf("%s/products/%s", c.v1URL(), url.PathEscape(id))
	return c.do("DELETE", reqURL, nil, nil, http.StatusNoContent)
}

// GetCollectionInfo reports the state of the product collection.
func (c *Client) GetCollectionInfo() (*CollectionInfo, error) {
	var info CollectionInfo
	if err := c.do("GET", c.v1URL()+"/products/collection", nil, &info, http.StatusOK); err != nil {
		return nil, err
	}

	return &info, nil
}

// Health checks service health. The endpoint is public; no API key is needed.
func (c *Client) Health() (*HealthStatus, error) {
	var status HealthStatus
	if err := c.do("GET", c.baseURL+"/health", nil, &status, http.StatusOK); err != nil {
		return nil, err
	}

	return &status, nil
}
