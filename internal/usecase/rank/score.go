package rank

import (
	"strings"
	"time"

	"github.com/chiefastro/gor/internal/domain/geo"
	"github.com/chiefastro/gor/internal/domain/offer"
	"github.com/chiefastro/gor/internal/domain/search"
)

// Blend weights. Semantic relevance dominates, geography is secondary,
// freshness is a tie-breaker.
const (
	weightSemantic = 0.5
	weightGeo      = 0.3
	weightTime     = 0.2
)

// Neutral and degraded score levels shared by the scoring functions.
const (
	neutralScore         = 0.5
	missingLocationScore = 0.3
)

// scoreCandidate computes per-dimension scores, each in [0,1], and the
// weighted blend.
func scoreCandidate(c search.Candidate, p search.Params, now time.Time) search.Scores {
	s := search.Scores{
		Semantic: semanticScore(c, p.Query),
		Geo:      geoScore(c.Offer, p),
		Time:     timeScore(c.Offer, now),
	}
	s.Combined = weightSemantic*s.Semantic + weightGeo*s.Geo + weightTime*s.Time
	return s
}

// semanticScore prefers the true vector similarity reported by the index.
// Candidates drawn without vector search fall back to a term-overlap
// heuristic over the stored search text.
func semanticScore(c search.Candidate, query string) float64 {
	if c.Similarity >= 0 {
		return min(c.Similarity, 1.0)
	}
	return termOverlapScore(c, query)
}

// termOverlapScore is the offline heuristic: substring and word-overlap
// bonuses against the search text, labels, title and description.
func termOverlapScore(c search.Candidate, query string) float64 {
	if query == "" {
		return neutralScore
	}

	query = strings.ToLower(query)
	text := strings.ToLower(c.SearchText)

	score := 0.0
	if strings.Contains(text, query) {
		score += 0.4
	}

	queryWords := strings.Fields(query)
	if len(queryWords) > 0 {
		textWords := make(map[string]struct{})
		for _, w := range strings.Fields(text) {
			textWords[w] = struct{}{}
		}
		labels := make(map[string]struct{})
		for _, l := range c.Offer.Labels {
			labels[strings.ToLower(l)] = struct{}{}
		}

		var inText, inLabels int
		for _, w := range queryWords {
			if _, ok := textWords[w]; ok {
				inText++
			}
			if _, ok := labels[w]; ok {
				inLabels++
			}
		}
		score += float64(inText) / float64(len(queryWords)) * 0.3
		score += float64(inLabels) / float64(len(queryWords)) * 0.2
	}

	if strings.Contains(strings.ToLower(c.Offer.Title), query) {
		score += 0.1
	}
	if strings.Contains(strings.ToLower(c.Offer.Description), query) {
		score += 0.05
	}

	return min(score, 1.0)
}

// geoScore implements the soft radius: a distant offer is heavily
// penalized, never hard-excluded.
func geoScore(o *offer.Offer, p search.Params) float64 {
	if !p.HasGeo() {
		return neutralScore
	}

	loc := o.Location()
	if !loc.HasCoordinates() {
		// Known-incomplete candidates rank behind known-complete ones.
		return missingLocationScore
	}

	distanceM := geo.Haversine(*p.Lat, *p.Lng, *loc.Lat, *loc.Lng)
	radiusM := float64(p.RadiusM)

	if distanceM <= radiusM {
		// Within radius: 1.0 at zero distance down to 0.8 at the boundary.
		return 1.0 - (distanceM/radiusM)*0.2
	}
	// Beyond: 0.8 at the boundary down to 0.0 at twice the radius.
	return max(0.0, 0.8-(distanceM-radiusM)/radiusM*0.8)
}

// timeScore buckets by days until expiry. Offers expiring soon score
// highest so they get surfaced before they lapse.
func timeScore(o *offer.Offer, now time.Time) float64 {
	if o.ExpiresAt == "" {
		return neutralScore
	}

	expires, err := time.Parse(time.RFC3339, o.ExpiresAt)
	if err != nil {
		// A malformed expiry degrades to neutral, never raises.
		return neutralScore
	}

	if expires.Before(now) {
		return 0.0
	}

	days := int(expires.Sub(now).Hours() / 24)
	switch {
	case days <= 7:
		return 1.0
	case days <= 30:
		return 0.8
	case days <= 90:
		return 0.6
	default:
		return 0.4
	}
}
