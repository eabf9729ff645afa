package search

import "github.com/chiefastro/gor/internal/domain/offer"

// Candidate is one retrieval hit before ranking: the stored payload plus
// the vector similarity reported by the index (negative when the hit came
// from an unranked scroll).
type Candidate struct {
	Offer      *offer.Offer
	SearchText string
	Similarity float64
}

// NoSimilarity marks a candidate drawn without vector search.
const NoSimilarity = -1.0

// Scores holds the per-dimension rank scores, each in [0,1].
type Scores struct {
	Semantic float64 `json:"semantic"`
	Geo      float64 `json:"geo"`
	Time     float64 `json:"time"`
	Combined float64 `json:"combined"`
}

// Ranked pairs an offer with its blended score.
type Ranked struct {
	Offer  *offer.Offer
	Scores Scores
}

// Results is a ranked, paginated result set. Total is the candidate pool
// size before pagination.
type Results struct {
	Offers []*offer.Offer `json:"offers"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// Empty returns a zero result set carrying the request's pagination.
func Empty(p Params) Results {
	return Results{Offers: []*offer.Offer{}, Total: 0, Limit: p.Limit, Offset: p.Offset}
}
