package chunk

import (
	"errors"
	"strings"
	"testing"

	"github.com/askphys/askphys/internal/config"
)

func mustChunker(t *testing.T, size, overlap int) *Chunker {
	t.Helper()
	c, err := New(size, overlap)
	if err != nil {
		t.Fatalf("New(%d, %d): %v", size, overlap, err)
	}
	return c
}

func TestNew_InvalidParameters(t *testing.T) {
	tests := []struct {
		name          string
		size, overlap int
		wantErr       error
	}{
		{"zero size", 0, 0, config.ErrInvalidChunkSize},
		{"negative size", -5, 0, config.ErrInvalidChunkSize},
		{"overlap equals size", 100, 100, config.ErrInvalidChunkOverlap},
		{"overlap above size", 100, 150, config.ErrInvalidChunkOverlap},
		{"negative overlap", 100, -1, config.ErrInvalidChunkOverlap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.size, tt.overlap); !errors.Is(err, tt.wantErr) {
				t.Errorf("New(%d, %d) error = %v, want %v", tt.size, tt.overlap, err, tt.wantErr)
			}
		})
	}
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	c := mustChunker(t, 1000, 200)

	for _, text := range []string{"", "a", strings.Repeat("x", 999), strings.Repeat("x", 1000)} {
		chunks := c.Split(text)
		if len(chunks) != 1 {
			t.Fatalf("Split(%d runes) = %d chunks, want 1", len([]rune(text)), len(chunks))
		}
		if chunks[0] != text {
			t.Errorf("single chunk differs from input")
		}
	}
}

func TestSplit_ChunkCountFormula(t *testing.T) {
	// For L > size: count = ceil((L-overlap)/(size-overlap)).
	tests := []struct {
		length, size, overlap, want int
	}{
		{1001, 1000, 200, 2},
		{1800, 1000, 200, 2},
		{1801, 1000, 200, 3},
		{2500, 1000, 200, 3},
		{5000, 1000, 200, 6},
		{250, 100, 0, 3},
		{10, 4, 2, 4},
	}
	for _, tt := range tests {
		c := mustChunker(t, tt.size, tt.overlap)
		chunks := c.Split(strings.Repeat("a", tt.length))

		step := tt.size - tt.overlap
		want := (tt.length - tt.overlap + step - 1) / step
		if want != tt.want {
			t.Fatalf("test case inconsistent: formula gives %d, case says %d", want, tt.want)
		}
		if len(chunks) != tt.want {
			t.Errorf("Split(L=%d, size=%d, overlap=%d) = %d chunks, want %d",
				tt.length, tt.size, tt.overlap, len(chunks), tt.want)
		}
	}
}

func TestSplit_OverlapInvariant(t *testing.T) {
	// Consecutive chunks share exactly overlap runes, except possibly at
	// the shortened final chunk.
	c := mustChunker(t, 50, 10)
	text := strings.Repeat("abcdefghij", 37) // 370 runes

	chunks := c.Split(text)
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		cur := []rune(chunks[i])
		tail := string(prev[len(prev)-10:])
		head := string(cur[:10])
		if tail != head {
			t.Fatalf("chunk %d does not overlap its predecessor: tail=%q head=%q", i, tail, head)
		}
	}
}

func TestSplit_Reconstruction(t *testing.T) {
	// Concatenating each chunk's non-overlapping prefix plus the final
	// chunk reproduces the input exactly.
	c := mustChunker(t, 100, 30)
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 20)

	chunks := c.Split(text)
	step := 100 - 30
	var b strings.Builder
	for i, ch := range chunks {
		runes := []rune(ch)
		if i == len(chunks)-1 {
			b.WriteString(ch)
			break
		}
		b.WriteString(string(runes[:step]))
	}
	if b.String() != text {
		t.Errorf("reconstruction mismatch: got %d runes, want %d", len(b.String()), len([]rune(text)))
	}
}

func TestSplit_SpecExample(t *testing.T) {
	// 2500 runes with size 1000, overlap 200: windows start at 0, 800 and
	// 1600; the third window reaches the end so the walk stops.
	c := mustChunker(t, 1000, 200)
	chunks := c.Split(strings.Repeat("q", 2500))

	wantLens := []int{1000, 1000, 900}
	if len(chunks) != len(wantLens) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(wantLens))
	}
	for i, want := range wantLens {
		if got := len([]rune(chunks[i])); got != want {
			t.Errorf("chunk %d length = %d, want %d", i, got, want)
		}
	}
}

func TestSplit_MultiByteRunes(t *testing.T) {
	c := mustChunker(t, 4, 1)
	text := "αβγδεζηθ" // 8 runes, 16 bytes

	chunks := c.Split(text)
	for i, ch := range chunks {
		if got := len([]rune(ch)); got > 4 {
			t.Errorf("chunk %d has %d runes, want <= 4", i, got)
		}
	}
	// Windows advance by 3 runes: αβγδ, δεζη, ηθ.
	want := []string{"αβγδ", "δεζη", "ηθ"}
	if len(chunks) != len(want) {
		t.Fatalf("got %v, want %v", chunks, want)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i], want[i])
		}
	}
}
