package offerindex

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/chiefastro/gor/internal/db"
	"github.com/chiefastro/gor/internal/domain/offer"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn        func(ctx context.Context, key string, fields map[string]string) error
	hgetAllFn     func(ctx context.Context, key string) (map[string]string, error)
	existsFn      func(ctx context.Context, key string) (bool, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
	searchKNNFn   func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	searchListFn  func(
		ctx context.Context, index string, filter db.Filter, offset, limit int, fields []string,
	) (*db.SearchResult, error)
	searchCountFn func(ctx context.Context, index string, filter db.Filter) (int, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchList(
	ctx context.Context, index string, filter db.Filter, offset, limit int, fields []string,
) (*db.SearchResult, error) {
	if m.searchListFn != nil {
		return m.searchListFn(ctx, index, filter, offset, limit, fields)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchCount(ctx context.Context, index string, filter db.Filter) (int, error) {
	if m.searchCountFn != nil {
		return m.searchCountFn(ctx, index, filter)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, Config{Collection: "offers", VectorDim: 4})
	return repo, ms
}

func testOffer(t *testing.T) *offer.Offer {
	t.Helper()
	lat, lng := 43.07, -70.76
	return &offer.Offer{
		OfferID:   "lunch-special",
		Title:     "Lunch Special",
		ExpiresAt: "2027-01-01T00:00:00Z",
		Labels:    []string{"lunch", "italian"},
		Merchant: &offer.Merchant{
			ID:   "trattoria",
			Name: "La Trattoria",
			Location: &offer.Location{
				Lat: &lat, Lng: &lng, City: "Portsmouth", State: "NH",
			},
		},
	}
}

func testPoint(t *testing.T) *offer.Point {
	t.Helper()
	o := testOffer(t)
	return &offer.Point{
		ID:         offer.PointID(o.MerchantID(), o.OfferID),
		Vector:     []float32{0.1, 0.2, 0.3, 0.4},
		Offer:      o,
		SearchText: "italian wood-fired pizza la trattoria lunch special",
	}
}

func testEntry(t *testing.T, score float64) db.SearchEntry {
	t.Helper()
	o := testOffer(t)
	payload, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("marshal test offer: %v", err)
	}
	return db.SearchEntry{
		Key:   "gor:offers:" + offer.PointID(o.MerchantID(), o.OfferID),
		Score: score,
		Fields: map[string]string{
			fieldPayload:    string(payload),
			fieldSearchText: "italian wood-fired pizza la trattoria lunch special",
		},
	}
}
