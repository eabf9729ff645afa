package offerindex

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/chiefastro/gor/internal/domain/offer"
)

// Hash field layout for one indexed point. The payload travels as a JSON
// blob; the tag fields exist only so FT.SEARCH can pre-filter.
const (
	fieldPayload    = "payload"
	fieldSearchText = "search_text"
	fieldOfferID    = "offer_id"
	fieldMerchantID = "merchant_id"
	fieldLabels     = "labels"
	fieldVector     = "vector"

	labelSeparator = ","
)

// pointFields flattens a point into the hash fields stored under its key.
func pointFields(p *offer.Point) (map[string]string, error) {
	payload, err := json.Marshal(p.Offer)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	// Every field is always written. HSET merges into an existing hash, so
	// a field skipped on re-ingest would keep its previous value.
	fields := map[string]string{
		fieldPayload:    string(payload),
		fieldSearchText: p.SearchText,
		fieldOfferID:    p.Offer.OfferID,
		fieldMerchantID: p.Offer.MerchantID(),
		fieldLabels:     strings.Join(p.Offer.Labels, labelSeparator),
		fieldVector:     vectorToBytes(p.Vector),
	}
	return fields, nil
}

// parsePayload reconstructs the offer and search text from hash fields.
func parsePayload(fields map[string]string) (*offer.Offer, string, error) {
	raw, ok := fields[fieldPayload]
	if !ok || raw == "" {
		return nil, "", fmt.Errorf("missing payload field")
	}

	var o offer.Offer
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		return nil, "", fmt.Errorf("unmarshal payload: %w", err)
	}

	return &o, fields[fieldSearchText], nil
}

// vectorToBytes serializes a vector into the binary string FT.SEARCH expects.
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
