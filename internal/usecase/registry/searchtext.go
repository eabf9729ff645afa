package registry

import (
	"strings"

	"github.com/chiefastro/gor/internal/domain/offer"
)

// genericLabels are scheduling and location tags that add noise rather
// than signal to term matching. They are dropped from the search text;
// cuisine-specific labels stay.
var genericLabels = map[string]struct{}{
	"lunch":         {},
	"dinner":        {},
	"midday":        {},
	"evening":       {},
	"dine-in":       {},
	"takeout":       {},
	"dover-nh":      {},
	"new-hampshire": {},
	"seacoast":      {},
}

// DeriveSearchText concatenates an offer's text fields into the string
// that gets embedded and matched against queries. Highest-weight fields
// come first: the ordering decides which fields a term-overlap heuristic
// privileges, so it is part of the ranking contract, not cosmetics.
func DeriveSearchText(o *offer.Offer) string {
	parts := make([]string, 0, 8)

	if o.Content != nil {
		parts = append(parts,
			o.Content.CuisineType,
			o.Content.Description,
			strings.Join(o.Content.FeaturedItems, " "),
		)
	}

	parts = append(parts, o.MerchantName())

	var labels []string
	for _, l := range o.Labels {
		if _, generic := genericLabels[l]; !generic {
			labels = append(labels, l)
		}
	}
	parts = append(parts, strings.Join(labels, " "))

	parts = append(parts, o.Title, o.Description)

	if loc := o.Location(); loc != nil {
		parts = append(parts, loc.City, loc.State)
	}

	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}

	return strings.ToLower(strings.Join(nonEmpty, " "))
}
