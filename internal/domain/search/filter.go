package search

// Filter restricts retrieval to exact-match conditions. Labels are a
// membership test (any may match); MerchantID and OfferID must match.
type Filter struct {
	MerchantID string
	OfferID    string
	Labels     []string
}

// IsEmpty reports whether the filter has no conditions.
func (f Filter) IsEmpty() bool {
	return f.MerchantID == "" && f.OfferID == "" && len(f.Labels) == 0
}
