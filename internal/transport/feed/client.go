// Package feed pulls merchant offer syndication feeds over HTTP.
//
// A merchant directory endpoint lists merchants with their feed URLs; each
// feed lists offer document references which are fetched individually. The
// client is rate limited so a full ingestion pass does not hammer the
// publishing side.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/chiefastro/gor/internal/domain/offer"
	"github.com/chiefastro/gor/internal/usecase/registry"
	"github.com/chiefastro/gor/internal/version"
)

const (
	defaultRequestTimeout    = 10 * time.Second
	defaultRequestsPerSecond = 10
)

// Config holds feed client settings.
type Config struct {
	// DirectoryURL is the merchant directory endpoint, e.g. http://host/merchants.
	DirectoryURL string
	// RequestTimeout bounds each individual HTTP call.
	RequestTimeout time.Duration
	// RequestsPerSecond throttles all outgoing calls. Zero means the default.
	RequestsPerSecond float64
	Logger            *zap.Logger
}

// Client fetches merchants, feeds and offer documents. It implements
// registry.Source.
type Client struct {
	directoryURL string
	httpClient   *http.Client
	limiter      *rate.Limiter
	logger       *zap.Logger
}

// NewClient creates a feed client with defaults applied.
func NewClient(cfg *Config) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		directoryURL: cfg.DirectoryURL,
		httpClient:   &http.Client{Timeout: timeout},
		limiter:      rate.NewLimiter(rate.Limit(rps), 1),
		logger:       logger,
	}
}

// directoryResponse is the wire shape of the merchant directory.
type directoryResponse struct {
	Merchants []directoryMerchant `json:"merchants"`
}

type directoryMerchant struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	FeedURL string `json:"osf_url"`
}

// feedDocument is the wire shape of a merchant feed.
type feedDocument struct {
	Offers []offerRef `json:"offers"`
}

type offerRef struct {
	Href      string `json:"href"`
	OfferID   string `json:"offer_id"`
	UpdatedAt string `json:"updated_at"`
}

// ListMerchants fetches the merchant directory.
func (c *Client) ListMerchants(ctx context.Context) ([]registry.Merchant, error) {
	var dir directoryResponse
	if err := c.getJSON(ctx, c.directoryURL, &dir); err != nil {
		return nil, fmt.Errorf("fetch merchant directory: %w", err)
	}

	merchants := make([]registry.Merchant, 0, len(dir.Merchants))
	for _, m := range dir.Merchants {
		if m.ID == "" || m.FeedURL == "" {
			c.logger.Warn("Skipping malformed directory entry",
				zap.String("merchant_id", m.ID))
			continue
		}
		merchants = append(merchants, registry.Merchant{
			ID:      m.ID,
			Name:    m.Name,
			FeedURL: m.FeedURL,
		})
	}

	c.logger.Debug("Fetched merchant directory", zap.Int("merchants", len(merchants)))
	return merchants, nil
}

// FetchOffers fetches a merchant's feed and resolves every offer reference
// into a full offer document. A reference that fails to resolve is logged
// and skipped; it does not fail the whole merchant.
func (c *Client) FetchOffers(ctx context.Context, m registry.Merchant) ([]*offer.Offer, error) {
	var doc feedDocument
	if err := c.getJSON(ctx, m.FeedURL, &doc); err != nil {
		return nil, fmt.Errorf("fetch feed for merchant %s: %w", m.ID, err)
	}

	offers := make([]*offer.Offer, 0, len(doc.Offers))
	for _, ref := range doc.Offers {
		o, err := c.fetchOffer(ctx, ref)
		if err != nil {
			if ctx.Err() != nil {
				return offers, ctx.Err()
			}
			c.logger.Warn("Failed to fetch offer document",
				zap.String("merchant_id", m.ID),
				zap.String("offer_id", ref.OfferID),
				zap.Error(err))
			continue
		}
		offers = append(offers, o)
	}

	return offers, nil
}

func (c *Client) fetchOffer(ctx context.Context, ref offerRef) (*offer.Offer, error) {
	var o offer.Offer
	if err := c.getJSON(ctx, ref.Href, &o); err != nil {
		return nil, err
	}
	if o.OfferID == "" {
		o.OfferID = ref.OfferID
	}
	return &o, nil
}

// getJSON performs a rate-limited GET and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", url, err)
	}
	return nil
}
