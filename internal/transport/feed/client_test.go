package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/chiefastro/gor/internal/usecase/registry"
	"github.com/chiefastro/gor/internal/version"
)

// newFeedServer serves a merchant directory with one merchant, its feed and
// its offer documents.
func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("/merchants", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"merchants": [
			{"id": "otto", "name": "Otto Pizza", "osf_url": "` + srv.URL + `/feeds/otto"},
			{"id": "", "name": "broken", "osf_url": ""}
		]}`))
	})
	mux.HandleFunc("/feeds/otto", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"osf_version": "1.0", "offers": [
			{"href": "` + srv.URL + `/offers/ofr_001", "offer_id": "ofr_001", "updated_at": "2026-01-01T00:00:00Z"},
			{"href": "` + srv.URL + `/offers/ofr_002", "offer_id": "ofr_002", "updated_at": "2026-01-01T00:00:00Z"}
		]}`))
	})
	mux.HandleFunc("/offers/ofr_001", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"offer_id": "ofr_001",
			"title": "Lunch Special",
			"merchant": {"id": "otto", "name": "Otto Pizza"},
			"labels": ["pizza", "lunch"]
		}`))
	})
	mux.HandleFunc("/offers/ofr_002", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title": "Dinner Deal", "merchant": {"id": "otto"}}`))
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(&Config{
		DirectoryURL:      srv.URL + "/merchants",
		RequestsPerSecond: 1000,
		Logger:            zap.NewNop(),
	})
}

func TestListMerchants(t *testing.T) {
	srv := newFeedServer(t)
	client := newTestClient(srv)

	merchants, err := client.ListMerchants(context.Background())
	if err != nil {
		t.Fatalf("ListMerchants failed: %v", err)
	}

	if len(merchants) != 1 {
		t.Fatalf("expected 1 merchant (malformed entry skipped), got %d", len(merchants))
	}
	if merchants[0].ID != "otto" {
		t.Errorf("expected merchant id otto, got %s", merchants[0].ID)
	}
	if merchants[0].Name != "Otto Pizza" {
		t.Errorf("expected merchant name Otto Pizza, got %s", merchants[0].Name)
	}
	if merchants[0].FeedURL != srv.URL+"/feeds/otto" {
		t.Errorf("unexpected feed url: %s", merchants[0].FeedURL)
	}
}

func TestGetJSON_SetsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"merchants": []}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)
	if _, err := client.ListMerchants(context.Background()); err != nil {
		t.Fatalf("ListMerchants failed: %v", err)
	}
	if gotUA != version.UserAgent() {
		t.Errorf("User-Agent = %q, want %q", gotUA, version.UserAgent())
	}
}

func TestListMerchants_DirectoryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv)
	if _, err := client.ListMerchants(context.Background()); err == nil {
		t.Error("expected error for failing directory")
	}
}

func TestFetchOffers(t *testing.T) {
	srv := newFeedServer(t)
	client := newTestClient(srv)

	offers, err := client.FetchOffers(context.Background(), registry.Merchant{
		ID:      "otto",
		FeedURL: srv.URL + "/feeds/otto",
	})
	if err != nil {
		t.Fatalf("FetchOffers failed: %v", err)
	}

	if len(offers) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(offers))
	}
	if offers[0].OfferID != "ofr_001" {
		t.Errorf("expected offer id ofr_001, got %s", offers[0].OfferID)
	}
	if offers[0].Title != "Lunch Special" {
		t.Errorf("unexpected title: %s", offers[0].Title)
	}
	// The second document carries no offer_id of its own; the feed
	// reference fills it in.
	if offers[1].OfferID != "ofr_002" {
		t.Errorf("expected offer id from feed reference, got %s", offers[1].OfferID)
	}
}

func TestFetchOffers_SkipsFailingDocuments(t *testing.T) {
	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("/feed", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"offers": [
			{"href": "` + srv.URL + `/dead", "offer_id": "ofr_dead", "updated_at": "2026-01-01T00:00:00Z"},
			{"href": "` + srv.URL + `/live", "offer_id": "ofr_live", "updated_at": "2026-01-01T00:00:00Z"}
		]}`))
	})
	mux.HandleFunc("/dead", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/live", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"offer_id": "ofr_live", "merchant": {"id": "m1"}}`))
	})

	srv = httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(srv)
	offers, err := client.FetchOffers(context.Background(), registry.Merchant{
		ID:      "m1",
		FeedURL: srv.URL + "/feed",
	})
	if err != nil {
		t.Fatalf("FetchOffers failed: %v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("expected 1 offer, got %d", len(offers))
	}
	if offers[0].OfferID != "ofr_live" {
		t.Errorf("expected surviving offer ofr_live, got %s", offers[0].OfferID)
	}
}

func TestFetchOffers_FeedUnreachable(t *testing.T) {
	srv := newFeedServer(t)
	client := newTestClient(srv)

	_, err := client.FetchOffers(context.Background(), registry.Merchant{
		ID:      "ghost",
		FeedURL: srv.URL + "/feeds/ghost",
	})
	if err == nil {
		t.Error("expected error for missing feed")
	}
}
