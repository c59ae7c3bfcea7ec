package chunk

import (
	"strings"
	"testing"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{name: "defaults", size: 1000, overlap: 200, wantErr: false},
		{name: "zero overlap", size: 100, overlap: 0, wantErr: false},
		{name: "zero size", size: 0, overlap: 0, wantErr: true},
		{name: "negative size", size: -1, overlap: 0, wantErr: true},
		{name: "negative overlap", size: 100, overlap: -1, wantErr: true},
		{name: "overlap equals size", size: 100, overlap: 100, wantErr: true},
		{name: "overlap exceeds size", size: 100, overlap: 150, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.size, tt.overlap)
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%d, %d) error = %v, wantErr %v", tt.size, tt.overlap, err, tt.wantErr)
			}
		})
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	if got := Default().Split(""); got != nil {
		t.Errorf("Split(\"\") = %v, want nil", got)
	}
}

func TestSplit_ShortInput(t *testing.T) {
	s := Default()
	in := "  short text, well under one window  "
	got := s.Split(in)
	if len(got) != 1 {
		t.Fatalf("Split(short) produced %d chunks, want 1", len(got))
	}
	if want := strings.TrimSpace(in); got[0] != want {
		t.Errorf("Split(short)[0] = %q, want %q", got[0], want)
	}
}

// A 2500-rune input with no sentence terminators degenerates to a pure
// sliding window: three chunks starting at offsets 0, 800, 1600.
func TestSplit_SlidingWindowOffsets(t *testing.T) {
	in := strings.Repeat("a", 2500)
	got := Default().Split(in)

	if len(got) != 3 {
		t.Fatalf("Split(2500 runes) produced %d chunks, want 3", len(got))
	}

	wantLens := []int{1000, 1000, 900} // offsets 0, 800, 1600
	for i, c := range got {
		if len(c) != wantLens[i] {
			t.Errorf("chunk %d length = %d, want %d", i, len(c), wantLens[i])
		}
	}

	// Overlap check: the first 200 runes of chunk n+1 equal the last 200 of chunk n.
	for i := 0; i < len(got)-1; i++ {
		if got[i][len(got[i])-200:] != got[i+1][:200] {
			t.Errorf("chunks %d and %d do not share a 200-rune overlap", i, i+1)
		}
	}
}

func TestSplit_SentenceBoundarySnap(t *testing.T) {
	s, err := New(100, 20)
	if err != nil {
		t.Fatal(err)
	}

	// A period at offset 79 (past the midpoint 50) should end the first chunk.
	in := strings.Repeat("a", 79) + "." + strings.Repeat("b", 120)
	got := s.Split(in)

	if len(got) < 2 {
		t.Fatalf("Split produced %d chunks, want at least 2", len(got))
	}
	if want := strings.Repeat("a", 79) + "."; got[0] != want {
		t.Errorf("chunk 0 = %q, want %q", got[0], want)
	}
}

func TestSplit_BreakBeforeMidpointIgnored(t *testing.T) {
	s, err := New(100, 20)
	if err != nil {
		t.Fatal(err)
	}

	// Period at offset 10 sits before the midpoint; the window stays full.
	in := strings.Repeat("a", 10) + "." + strings.Repeat("b", 200)
	got := s.Split(in)

	if len(got[0]) != 100 {
		t.Errorf("chunk 0 length = %d, want full window 100", len(got[0]))
	}
}

func TestSplit_NewlineBreak(t *testing.T) {
	s, err := New(100, 20)
	if err != nil {
		t.Fatal(err)
	}

	in := strings.Repeat("a", 90) + "\n" + strings.Repeat("b", 120)
	got := s.Split(in)

	// The newline at offset 90 ends the first chunk; trimming removes it.
	if want := strings.Repeat("a", 90); got[0] != want {
		t.Errorf("chunk 0 = %q, want %q", got[0], want)
	}
}

func TestSplit_TrimsWhitespace(t *testing.T) {
	got := Default().Split("   hello world.   ")
	if len(got) != 1 || got[0] != "hello world." {
		t.Errorf("Split = %v, want [\"hello world.\"]", got)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	in := strings.Repeat("the quick brown fox. ", 200)
	s := Default()

	first := s.Split(in)
	second := s.Split(in)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestSplit_MultiByteRunes(t *testing.T) {
	s, err := New(10, 2)
	if err != nil {
		t.Fatal(err)
	}

	in := strings.Repeat("héllo wörld ", 10)
	for i, c := range s.Split(in) {
		for _, r := range c {
			if r == '�' {
				t.Fatalf("chunk %d contains a replacement rune: %q", i, c)
			}
		}
	}
}

// Every rune of the input must appear in at least one chunk span.
func TestSplit_CoversInput(t *testing.T) {
	s, err := New(50, 10)
	if err != nil {
		t.Fatal(err)
	}

	in := strings.Repeat("coverage sentence here. ", 30)
	chunks := s.Split(in)

	// Reconstruct coverage by walking chunks through the source.
	pos := 0
	for i, c := range chunks {
		idx := strings.Index(in[pos:], c)
		if idx < 0 {
			t.Fatalf("chunk %d %q not found in input after offset %d", i, c, pos)
		}
		// The next chunk must start at or before this chunk's end
		// (overlap), never leaving a gap (trimmed whitespace aside).
		pos += idx
	}

	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(strings.TrimSpace(in), last) {
		t.Errorf("final chunk does not reach the end of the input")
	}
}
