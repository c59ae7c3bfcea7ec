package rag

// IngestResult reports the outcome of one ingestion.
type IngestResult struct {
	ChunksAdded    int
	TotalDocuments int
}

// Source is one retrieved chunk backing an answer. Content is a preview
// truncated to 200 characters; SimilarityScore is 1 minus the cosine
// distance, so higher means more relevant.
type Source struct {
	Content         string
	Metadata        map[string]any
	SimilarityScore float64
}

// ChatResult is a generated answer with its provenance.
type ChatResult struct {
	Response       string
	ConversationID string
	Sources        []Source
}

// Stats describes the current state of the knowledge base.
type Stats struct {
	TotalDocuments int
	CollectionName string
	Status         string
}
