// Package offer defines the canonical offer document model shared by the
// registry, the index store, and the ranking service.
package offer

// Content holds the free-form structured text fields used for search.
type Content struct {
	Description   string   `json:"restaurant_description,omitempty"`
	FeaturedItems []string `json:"featured_items,omitempty"`
	CuisineType   string   `json:"cuisine_type,omitempty"`
	PriceRange    string   `json:"price_range,omitempty"`
	DietaryOpts   []string `json:"dietary_options,omitempty"`
}

// Terms holds offer conditions. Passed through as-is, never scored.
type Terms struct {
	MinSpend     float64           `json:"min_spend,omitempty"`
	MaxDiscount  float64           `json:"max_discount,omitempty"`
	ValidDays    []string          `json:"valid_days,omitempty"`
	ValidHours   map[string]string `json:"valid_hours,omitempty"`
	Restrictions []string          `json:"restrictions,omitempty"`
}

// Bounty holds the reward and revenue split. Passed through, not scored.
type Bounty struct {
	Amount       float64            `json:"amount"`
	Currency     string             `json:"currency,omitempty"`
	RevenueSplit map[string]float64 `json:"revenue_split,omitempty"`
}

// Location is a merchant location. Coordinates are optional; offers
// without coordinates remain indexable.
type Location struct {
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	Address string   `json:"address,omitempty"`
	City    string   `json:"city,omitempty"`
	State   string   `json:"state,omitempty"`
	Zip     string   `json:"zip,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (l *Location) HasCoordinates() bool {
	return l != nil && l.Lat != nil && l.Lng != nil
}

// Merchant identifies the offer publisher.
type Merchant struct {
	ID       string    `json:"id"`
	Name     string    `json:"name,omitempty"`
	Location *Location `json:"location,omitempty"`
	Phone    string    `json:"phone,omitempty"`
	Hours    []string  `json:"hours,omitempty"`
}

// Offer is a merchant-published promotional document.
//
// Timestamps are kept as RFC 3339 strings rather than time.Time: the
// registry passes them through unmodified, and a malformed expiry must
// degrade to a neutral freshness score instead of failing ingestion.
type Offer struct {
	OfferID     string    `json:"offer_id"`
	Version     string    `json:"offer_version,omitempty"`
	CreatedAt   string    `json:"created_at,omitempty"`
	UpdatedAt   string    `json:"updated_at,omitempty"`
	ExpiresAt   string    `json:"expires_at,omitempty"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Content     *Content  `json:"content,omitempty"`
	Terms       *Terms    `json:"terms,omitempty"`
	Bounty      *Bounty   `json:"bounty,omitempty"`
	Merchant    *Merchant `json:"merchant,omitempty"`
	Labels      []string  `json:"labels,omitempty"`
}

// MerchantID returns the publisher id, or "" when the merchant block is absent.
func (o *Offer) MerchantID() string {
	if o.Merchant == nil {
		return ""
	}
	return o.Merchant.ID
}

// MerchantName returns the publisher name, or "" when absent.
func (o *Offer) MerchantName() string {
	if o.Merchant == nil {
		return ""
	}
	return o.Merchant.Name
}

// Location returns the merchant location, or nil when absent.
func (o *Offer) Location() *Location {
	if o.Merchant == nil {
		return nil
	}
	return o.Merchant.Location
}

// HasLabel reports whether the offer carries the given label.
func (o *Offer) HasLabel(label string) bool {
	for _, l := range o.Labels {
		if l == label {
			return true
		}
	}
	return false
}
