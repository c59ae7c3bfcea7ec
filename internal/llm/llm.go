// Package llm wraps the external AI services behind two small clients:
// an Embedder that turns text into fixed-dimension vectors and a
// Generator that produces free text from an assembled prompt.
//
// Neither client retries. Failures are classified with sentinel errors
// and surface immediately to the caller.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"google.golang.org/genai"
)

var (
	// ErrEmbedding indicates the external embedding call failed.
	ErrEmbedding = errors.New("embedding generation failed")

	// ErrGeneration indicates the external text generation call failed.
	ErrGeneration = errors.New("response generation failed")
)

// VectorDimension is the embedding width stored in pgvector.
// gemini-embedding-001 outputs 3072 dimensions by default but supports
// truncation via OutputDimensionality; the chunks schema is vector(768).
const VectorDimension int32 = 768

// embedTaskType marks embeddings as document-retrieval content. The same
// call is reused for queries so both live in one consistent vector space.
const embedTaskType = "RETRIEVAL_DOCUMENT"

// Embedder converts text into embedding vectors via a Genkit ai.Embedder.
type Embedder struct {
	embedder ai.Embedder
}

// NewEmbedder wraps a Genkit embedder.
func NewEmbedder(embedder ai.Embedder) (*Embedder, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	return &Embedder{embedder: embedder}, nil
}

// Embed returns the embedding vector for text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	dim := VectorDimension
	resp, err := e.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText(text, nil)},
		Options: &genai.EmbedContentConfig{
			TaskType:             embedTaskType,
			OutputDimensionality: &dim,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding response", ErrEmbedding)
	}
	return resp.Embeddings[0].Embedding, nil
}

// Generator produces text from a prompt using a fixed model.
type Generator struct {
	g     *genkit.Genkit
	model string
}

// NewGenerator creates a Generator bound to the given model name
// (provider-qualified, e.g. "googleai/gemma-3-27b-it").
func NewGenerator(g *genkit.Genkit, model string) (*Generator, error) {
	if g == nil {
		return nil, fmt.Errorf("genkit instance is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model name is required")
	}
	return &Generator{g: g, model: model}, nil
}

// Generate runs a single completion for the fully assembled prompt and
// returns the model's text verbatim.
func (gen *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := genkit.Generate(ctx, gen.g,
		ai.WithModelName(gen.model),
		ai.WithPrompt(prompt),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return resp.Text(), nil
}
