package embedding

import (
	"context"
	"errors"
	"math"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/chiefastro/gor/internal/domain"
	"github.com/chiefastro/gor/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

func TestDeterministic_BitIdentical(t *testing.T) {
	emb := NewDeterministic(64)

	a, err := emb.Embed(context.Background(), "wood-fired pizza")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewDeterministic(64).Embed(context.Background(), "wood-fired pizza")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range a.Embedding {
		if a.Embedding[i] != b.Embedding[i] {
			t.Fatalf("vectors diverge at %d: %v vs %v", i, a.Embedding[i], b.Embedding[i])
		}
	}
	if !a.Fallback {
		t.Error("deterministic result must be marked as fallback")
	}
}

func TestDeterministic_DifferentTexts(t *testing.T) {
	emb := NewDeterministic(64)
	a, _ := emb.Embed(context.Background(), "pizza")
	b, _ := emb.Embed(context.Background(), "sushi")

	same := true
	for i := range a.Embedding {
		if a.Embedding[i] != b.Embedding[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("distinct texts produced identical vectors")
	}
}

func TestDeterministic_UnitNorm(t *testing.T) {
	emb := NewDeterministic(128)
	res, _ := emb.Embed(context.Background(), "tacos al pastor")

	var norm float64
	for _, v := range res.Embedding {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if math.Abs(norm-1.0) > 1e-5 {
		t.Errorf("norm = %f, want 1.0", norm)
	}
}

func TestDeterministic_WhitespaceYieldsZeroVector(t *testing.T) {
	emb := NewDeterministic(16)
	for _, text := range []string{"", "   ", "\n\t"} {
		res, err := emb.Embed(context.Background(), text)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Embedding) != 16 {
			t.Fatalf("expected dim 16, got %d", len(res.Embedding))
		}
		for _, v := range res.Embedding {
			if v != 0 {
				t.Fatalf("expected zero vector for %q", text)
			}
		}
	}
}

func TestDeterministic_BatchMatchesSingle(t *testing.T) {
	emb := NewDeterministic(32)
	single, _ := emb.Embed(context.Background(), "ramen")
	batch, err := emb.BatchEmbed(context.Background(), []string{"ramen", "pho"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.Embeddings) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(batch.Embeddings))
	}
	for i := range single.Embedding {
		if batch.Embeddings[0][i] != single.Embedding[i] {
			t.Fatal("batch embedding differs from single embedding of same text")
		}
	}
}

// --- fallback decorator ---

type failingEmbedder struct{ err error }

func (f *failingEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, f.err
}

type fixedEmbedder struct{ vec []float32 }

func (f *fixedEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: f.vec}, nil
}

func TestFallback_UsesRealBackend(t *testing.T) {
	real := &fixedEmbedder{vec: []float32{1, 2, 3}}
	fb := NewFallback(real, NewDeterministic(3), zap.NewNop())

	res, err := fb.Embed(context.Background(), "pizza")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Fallback {
		t.Error("healthy backend result must not be marked fallback")
	}
	if res.Embedding[0] != 1 {
		t.Errorf("expected real backend vector, got %v", res.Embedding)
	}
}

func TestFallback_DegradesOnError(t *testing.T) {
	real := &failingEmbedder{err: errors.New("connection refused")}
	fb := NewFallback(real, NewDeterministic(8), zap.NewNop())

	res, err := fb.Embed(context.Background(), "pizza")
	if err != nil {
		t.Fatalf("fallback must absorb backend errors, got %v", err)
	}
	if !res.Fallback {
		t.Error("degraded result must be marked fallback")
	}
	if len(res.Embedding) != 8 {
		t.Errorf("expected dim 8, got %d", len(res.Embedding))
	}
}

func TestFallback_NilBackend(t *testing.T) {
	fb := NewFallback(nil, NewDeterministic(4), zap.NewNop())

	res, err := fb.Embed(context.Background(), "pizza")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Fallback {
		t.Error("expected fallback result when no backend configured")
	}
}

// --- cosine ---

func TestCosine(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero magnitude", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := domain.Cosine(tc.a, tc.b); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("Cosine = %f, want %f", got, tc.want)
			}
		})
	}
}
