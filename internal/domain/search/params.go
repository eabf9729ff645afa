// Package search defines the query and result types of the discovery API.
package search

import (
	"fmt"
	"strings"

	"github.com/chiefastro/gor/internal/domain/geo"
)

// Parameter limits and defaults.
const (
	MaxQueryLength = 4096
	DefaultLimit   = 20
	MaxLimit       = 100
	DefaultRadiusM = 50_000
)

// Params is a validated, normalized search query.
type Params struct {
	Query      string   `json:"query"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`
	RadiusM    int      `json:"radius_m"`
	Labels     []string `json:"labels"`
	MerchantID string   `json:"merchant_id,omitempty"`
	Limit      int      `json:"limit"`
	Offset     int      `json:"offset"`
}

// NewParams validates and normalizes search parameters.
// Defaults: limit=20, offset=0, radius_m=50000. Lat and lng must be
// supplied together.
func NewParams(
	query string, lat, lng *float64, radiusM int,
	labels []string, merchantID string, limit, offset int,
) (Params, error) {
	query = strings.TrimSpace(query)
	if len(query) > MaxQueryLength {
		return Params{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if (lat == nil) != (lng == nil) {
		return Params{}, fmt.Errorf("lat and lng must be provided together")
	}
	if lat != nil && !geo.ValidateCoordinates(*lat, *lng) {
		return Params{}, fmt.Errorf("coordinates out of range: lat=%g lng=%g", *lat, *lng)
	}
	if radiusM <= 0 {
		radiusM = DefaultRadiusM
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		return Params{}, fmt.Errorf("offset must be non-negative, got %d", offset)
	}

	normalized := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l != "" {
			normalized = append(normalized, l)
		}
	}

	return Params{
		Query:      query,
		Lat:        lat,
		Lng:        lng,
		RadiusM:    radiusM,
		Labels:     normalized,
		MerchantID: merchantID,
		Limit:      limit,
		Offset:     offset,
	}, nil
}

// HasQuery reports whether free-text search was requested.
func (p *Params) HasQuery() bool { return p.Query != "" }

// HasGeo reports whether a query location was supplied.
func (p *Params) HasGeo() bool { return p.Lat != nil && p.Lng != nil }
