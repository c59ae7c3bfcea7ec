// Package chunk splits source text into overlapping, boundary-aware
// segments sized for embedding.
package chunk

import (
	"fmt"
	"strings"
)

// Default window settings, tuned for embedding models with ~2k-token input.
const (
	DefaultSize    = 1000
	DefaultOverlap = 200
)

// Splitter produces overlapping chunks from a text blob.
// Size and Overlap are measured in runes so multi-byte text never
// splits mid-character.
type Splitter struct {
	size    int
	overlap int
}

// New creates a Splitter. The invariant 0 <= overlap < size is enforced
// here: an overlap equal to or larger than the window would keep the
// window start from advancing.
func New(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("overlap must be in [0, size), got overlap=%d size=%d", overlap, size)
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// Default returns a Splitter with the package default settings.
func Default() *Splitter {
	s, err := New(DefaultSize, DefaultOverlap)
	if err != nil {
		panic(err) // defaults satisfy the invariant
	}
	return s
}

// Split divides text into chunks of at most the configured size, with the
// configured overlap carried between consecutive chunks. When a window does
// not reach the end of the text, the chunk is truncated at the last sentence
// terminator ('.') or newline inside the window, provided that break point
// lies past the window midpoint. Each chunk is trimmed of surrounding
// whitespace. Empty input yields no chunks.
//
// Split is deterministic: identical input and settings always produce the
// identical chunk sequence.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	start := 0

	for start < len(runes) {
		end := start + s.size
		if end > len(runes) {
			end = len(runes)
		}
		window := runes[start:end]

		// Snap to the last sentence boundary when the window is full and
		// the break point lies past the midpoint. This avoids mid-sentence
		// cuts without producing pathologically short chunks.
		if end < len(runes) {
			if bp := lastBreak(window); bp > s.size/2 {
				window = window[:bp+1]
				end = start + bp + 1
			}
		}

		chunks = append(chunks, strings.TrimSpace(string(window)))

		// The chunk that reaches the end of the text is the last one;
		// rewinding by the overlap would only re-emit its tail.
		if end >= len(runes) {
			break
		}

		next := end - s.overlap
		if next <= start {
			// Boundary snapping can shrink the window below the overlap
			// when overlap >= size/2. Drop the overlap rather than stall.
			next = end
		}
		start = next
	}

	return chunks
}

// lastBreak returns the index of the last '.' or '\n' in window, or -1.
func lastBreak(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == '.' || window[i] == '\n' {
			return i
		}
	}
	return -1
}
