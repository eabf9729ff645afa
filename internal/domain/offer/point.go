package offer

import (
	"crypto/sha256"
	"encoding/hex"
)

// PointID derives the index point id for an offer. It is a pure function
// of (merchantID, offerID): re-ingesting the same offer always maps to
// the same point, so upserts overwrite instead of duplicating.
func PointID(merchantID, offerID string) string {
	h := sha256.Sum256([]byte(merchantID + "\x00" + offerID))
	return hex.EncodeToString(h[:16])
}

// Point is the storage-layer projection of an Offer: a fixed-dimension
// vector plus the payload the ranking service re-scores against.
type Point struct {
	ID         string
	Vector     []float32
	Offer      *Offer
	SearchText string
}
