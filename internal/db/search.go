package db

// Match is a single exact-match tag condition.
type Match struct {
	Field string
	Value string
}

// Filter restricts search results to exact-match tag conditions.
// Must conditions are ANDed; Any conditions form one ORed group that is
// ANDed with the rest (at least one must hold).
type Filter struct {
	Must []Match
	Any  []Match
}

// IsEmpty reports whether the filter has no conditions.
func (f Filter) IsEmpty() bool {
	return len(f.Must) == 0 && len(f.Any) == 0
}

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Filter       Filter
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
