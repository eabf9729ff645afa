// Package gor is a typed client for the offer discovery HTTP API.
package gor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/chiefastro/gor/internal/domain/offer"
	"github.com/chiefastro/gor/internal/domain/search"
	registryuc "github.com/chiefastro/gor/internal/usecase/registry"
)

const defaultTimeout = 30 * time.Second

// Client talks to a gor API server.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the Bearer token sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("gor: base URL required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Query describes a discovery search.
type Query struct {
	Text       string
	Lat        *float64
	Lng        *float64
	RadiusM    int
	Labels     []string
	MerchantID string
	Limit      int
	Offset     int
}

// SearchMetadata carries per-request ranking details.
type SearchMetadata struct {
	SearchTimeMs  float64 `json:"search_time_ms"`
	RankingMethod string  `json:"ranking_method"`
}

// SearchResponse is the ranked result of a discovery query.
type SearchResponse struct {
	Success  bool           `json:"success"`
	Query    search.Params  `json:"query"`
	Results  search.Results `json:"results"`
	Metadata SearchMetadata `json:"metadata"`
}

// Search runs a ranked offer search.
func (c *Client) Search(ctx context.Context, q Query) (*SearchResponse, error) {
	values := url.Values{}
	if q.Text != "" {
		values.Set("query", q.Text)
	}
	if q.Lat != nil {
		values.Set("lat", strconv.FormatFloat(*q.Lat, 'f', -1, 64))
	}
	if q.Lng != nil {
		values.Set("lng", strconv.FormatFloat(*q.Lng, 'f', -1, 64))
	}
	if q.RadiusM > 0 {
		values.Set("radius_m", strconv.Itoa(q.RadiusM))
	}
	if len(q.Labels) > 0 {
		values.Set("labels", strings.Join(q.Labels, ","))
	}
	if q.MerchantID != "" {
		values.Set("merchant_id", q.MerchantID)
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		values.Set("offset", strconv.Itoa(q.Offset))
	}

	var resp SearchResponse
	if err := c.do(ctx, http.MethodGet, "/offers?"+values.Encode(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetOffer fetches a single offer by id. merchantID may be empty; providing
// it enables the exact lookup path on the server.
func (c *Client) GetOffer(ctx context.Context, offerID, merchantID string) (*offer.Offer, error) {
	path := "/offers/" + url.PathEscape(offerID)
	if merchantID != "" {
		path += "?merchant_id=" + url.QueryEscape(merchantID)
	}

	var resp struct {
		Success bool         `json:"success"`
		Offer   *offer.Offer `json:"offer"`
	}
	if err := c.do(ctx, http.MethodGet, path, &resp); err != nil {
		return nil, err
	}
	return resp.Offer, nil
}

// MerchantOffers lists a merchant's offers, unranked.
func (c *Client) MerchantOffers(
	ctx context.Context, merchantID string, offset, limit int,
) ([]*offer.Offer, int, error) {
	values := url.Values{}
	if offset > 0 {
		values.Set("offset", strconv.Itoa(offset))
	}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}

	path := "/merchants/" + url.PathEscape(merchantID) + "/offers"
	if len(values) > 0 {
		path += "?" + values.Encode()
	}

	var resp struct {
		Success bool           `json:"success"`
		Offers  []*offer.Offer `json:"offers"`
		Total   int            `json:"total"`
	}
	if err := c.do(ctx, http.MethodGet, path, &resp); err != nil {
		return nil, 0, err
	}
	return resp.Offers, resp.Total, nil
}

// Stats fetches registry statistics.
func (c *Client) Stats(ctx context.Context) (registryuc.Stats, error) {
	var resp struct {
		Success bool             `json:"success"`
		Stats   registryuc.Stats `json:"stats"`
	}
	if err := c.do(ctx, http.MethodGet, "/stats", &resp); err != nil {
		return registryuc.Stats{}, err
	}
	return resp.Stats, nil
}

// Ingest triggers a full ingestion pass and returns its report.
func (c *Client) Ingest(ctx context.Context) (registryuc.IngestReport, error) {
	var resp struct {
		Success bool                    `json:"success"`
		Result  registryuc.IngestReport `json:"result"`
	}
	if err := c.do(ctx, http.MethodPost, "/ingest", &resp); err != nil {
		return registryuc.IngestReport{}, err
	}
	return resp.Result, nil
}

// Ping checks that the server reports itself healthy.
func (c *Client) Ping(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	return c.do(ctx, http.MethodGet, "/health", &resp)
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("gor: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gor: %s %s: %w", method, path, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return apiErrorFromResponse(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("gor: decode response: %w", err)
	}
	return nil
}
