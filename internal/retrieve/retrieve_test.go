package retrieve

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/askphys/askphys/internal/log"
	"github.com/askphys/askphys/internal/store"
)

type mockEmbedder struct {
	err error
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []float32{1, 0, 0}, nil
}

type mockSearcher struct {
	matches      []store.Match
	err          error
	gotThreshold float32
	gotLimit     int
	gotEmbedding []float32
}

func (m *mockSearcher) SimilaritySearch(ctx context.Context, embedding []float32, threshold float32, limit int) ([]store.Match, error) {
	m.gotEmbedding, m.gotThreshold, m.gotLimit = embedding, threshold, limit
	if m.err != nil {
		return nil, m.err
	}
	return m.matches, nil
}

func TestRetrieve(t *testing.T) {
	s := &mockSearcher{matches: []store.Match{
		{SourceID: "waves.pdf", Content: "first", Similarity: 0.9},
		{SourceID: "optics.pdf", Content: "second", Similarity: 0.7},
		{SourceID: "waves.pdf", Content: "third", Similarity: 0.5},
	}}
	p := New(&mockEmbedder{}, s, Options{Threshold: 0.4, TopK: 3}, log.NewNop())

	got, err := p.Retrieve(context.Background(), "what is diffraction?")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	if want := "first" + Separator + "second" + Separator + "third"; got.Text != want {
		t.Errorf("Text = %q, want %q", got.Text, want)
	}
	if want := []string{"waves.pdf", "optics.pdf"}; !equalStrings(got.Sources, want) {
		t.Errorf("Sources = %v, want %v", got.Sources, want)
	}
	if got.Matches != 3 {
		t.Errorf("Matches = %d, want 3", got.Matches)
	}
	if s.gotThreshold != 0.4 || s.gotLimit != 3 {
		t.Errorf("search args = (%v, %v), want (0.4, 3)", s.gotThreshold, s.gotLimit)
	}
}

func TestRetrieve_NoMatches(t *testing.T) {
	p := New(&mockEmbedder{}, &mockSearcher{}, Options{}, log.NewNop())

	got, err := p.Retrieve(context.Background(), "string theory?")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if got.Text != NoContext {
		t.Errorf("Text = %q, want %q", got.Text, NoContext)
	}
	if len(got.Sources) != 0 || got.Matches != 0 {
		t.Errorf("empty result should carry no sources, got %+v", got)
	}
}

func TestRetrieve_EmbeddingError(t *testing.T) {
	p := New(&mockEmbedder{err: errors.New("quota")}, &mockSearcher{}, Options{}, log.NewNop())

	if _, err := p.Retrieve(context.Background(), "q"); !errors.Is(err, ErrEmbedding) {
		t.Fatalf("error = %v, want ErrEmbedding", err)
	}
}

func TestRetrieve_StoreError(t *testing.T) {
	s := &mockSearcher{err: store.ErrRead}
	p := New(&mockEmbedder{}, s, Options{}, log.NewNop())

	if _, err := p.Retrieve(context.Background(), "q"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
}

func TestNew_DefaultTopK(t *testing.T) {
	s := &mockSearcher{}
	p := New(&mockEmbedder{}, s, Options{Threshold: 0.3}, log.NewNop())

	if _, err := p.Retrieve(context.Background(), "q"); err != nil {
		t.Fatal(err)
	}
	if s.gotLimit != 5 {
		t.Errorf("default top_k = %v, want 5", s.gotLimit)
	}
}

func TestNew_ZeroThresholdPreserved(t *testing.T) {
	s := &mockSearcher{matches: []store.Match{{SourceID: "a.pdf", Content: "x", Similarity: 0.01}}}
	p := New(&mockEmbedder{}, s, Options{Threshold: 0, TopK: 5}, log.NewNop())

	got, err := p.Retrieve(context.Background(), "q")
	if err != nil {
		t.Fatal(err)
	}
	if s.gotThreshold != 0 {
		t.Errorf("threshold = %v, want 0 passed through unchanged", s.gotThreshold)
	}
	if got.Matches != 1 {
		t.Errorf("Matches = %d, want 1", got.Matches)
	}
}

func TestNew_ClampsTopK(t *testing.T) {
	for _, tt := range []struct{ in, want int }{{-3, 1}, {25, 10}} {
		s := &mockSearcher{}
		p := New(&mockEmbedder{}, s, Options{TopK: tt.in}, log.NewNop())
		if _, err := p.Retrieve(context.Background(), "q"); err != nil {
			t.Fatal(err)
		}
		if s.gotLimit != tt.want {
			t.Errorf("TopK %d clamped to %d, want %d", tt.in, s.gotLimit, tt.want)
		}
	}
}

func TestAssemble_SingleMatch(t *testing.T) {
	got := Assemble([]store.Match{{SourceID: "a.pdf", Content: "only"}})
	if got.Text != "only" {
		t.Errorf("Text = %q, want no separator", got.Text)
	}
	if strings.Contains(got.Text, Separator) {
		t.Error("single match must not contain separator")
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
