package knowledge

// Source type values recorded in chunk metadata.
const (
	SourceTypeText = "text"
	SourceTypeURL  = "url"
	SourceTypeFile = "file"
)

// Document is one chunk of source text with its embedding and metadata,
// as stored in the knowledge base. Documents are immutable after insert.
type Document struct {
	ID       string
	Content  string
	Vector   []float32
	Metadata map[string]any
}

// Result is a single nearest-neighbor match. Distance is the cosine
// distance to the query vector; results are always ordered by ascending
// distance (closest first).
type Result struct {
	Content  string
	Metadata map[string]any
	Distance float64
}
