package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/answerdesk/answerdesk/internal/fetch"
	"github.com/answerdesk/answerdesk/internal/i18n"
	"github.com/answerdesk/answerdesk/internal/llm"
	"github.com/answerdesk/answerdesk/internal/rag"
)

// maxRequestBody caps JSON bodies and file uploads.
const maxRequestBody = 10 << 20 // 10 MB

// Service is the knowledge-base surface the HTTP layer depends on.
type Service interface {
	IngestText(ctx context.Context, text string, metadata map[string]any) (*rag.IngestResult, error)
	IngestURL(ctx context.Context, rawURL string, metadata map[string]any) (*rag.IngestResult, error)
	IngestFile(ctx context.Context, filename, contentType string, data []byte) (*rag.IngestResult, error)
	Chat(ctx context.Context, message, conversationID string) (*rag.ChatResult, error)
	Stats(ctx context.Context) (*rag.Stats, error)
	Clear(ctx context.Context) error
}

type handler struct {
	svc    Service
	tr     *i18n.Translator
	logger *slog.Logger
}

type ingestTextRequest struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

type ingestURLRequest struct {
	URL      string         `json:"url"`
	Metadata map[string]any `json:"metadata"`
}

type ingestResponse struct {
	Message        string `json:"message"`
	URL            string `json:"url,omitempty"`
	Filename       string `json:"filename,omitempty"`
	ChunksAdded    int    `json:"chunks_added"`
	TotalDocuments int    `json:"total_documents"`
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

type sourceResponse struct {
	Content         string         `json:"content"`
	Metadata        map[string]any `json:"metadata"`
	SimilarityScore float64        `json:"similarity_score"`
}

type chatResponse struct {
	Response       string           `json:"response"`
	ConversationID string           `json:"conversation_id"`
	Sources        []sourceResponse `json:"sources"`
}

type statsResponse struct {
	TotalDocuments int    `json:"total_documents"`
	CollectionName string `json:"collection_name"`
	Status         string `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}

// serviceError maps pipeline errors onto HTTP status codes: rejected
// input is 400, unsupported uploads 415, upstream AI failures 502, and
// everything else 500.
func (h *handler) serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rag.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error(), h.logger)
	case errors.Is(err, fetch.ErrPDFNotSupported):
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_content_type", h.tr.T("error.pdf_unsupported"), h.logger)
	case errors.Is(err, fetch.ErrUnsupportedContentType):
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_content_type", h.tr.T("error.unsupported_file"), h.logger)
	case errors.Is(err, fetch.ErrFetch):
		writeError(w, http.StatusBadRequest, "fetch_failed", err.Error(), h.logger)
	case errors.Is(err, llm.ErrEmbedding):
		writeError(w, http.StatusBadGateway, "embedding_failed", h.tr.T("error.embedding"), h.logger)
	case errors.Is(err, llm.ErrGeneration):
		writeError(w, http.StatusBadGateway, "generation_failed", h.tr.T("error.generation"), h.logger)
	default:
		h.logger.Error("unhandled service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", h.tr.T("error.internal"), h.logger)
	}
}

// root greets API consumers poking at the base URL.
func (h *handler) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: h.tr.T("welcome")})
}

// health reports liveness plus the current collection size, the shape
// expected by container orchestration probes.
func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.logger.Error("health check failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "unhealthy", h.tr.T("error.internal"), h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "healthy",
		"collection_count": stats.TotalDocuments,
	})
}

func (h *handler) ingestText(w http.ResponseWriter, r *http.Request) {
	var req ingestTextRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", h.tr.Sprintf("error.validation", "malformed JSON body"), h.logger)
		return
	}

	result, err := h.svc.IngestText(r.Context(), req.Text, req.Metadata)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{
		Message:        h.tr.T("ingest.text_success"),
		ChunksAdded:    result.ChunksAdded,
		TotalDocuments: result.TotalDocuments,
	})
}

func (h *handler) ingestURL(w http.ResponseWriter, r *http.Request) {
	var req ingestURLRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", h.tr.Sprintf("error.validation", "malformed JSON body"), h.logger)
		return
	}

	result, err := h.svc.IngestURL(r.Context(), req.URL, req.Metadata)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{
		Message:        h.tr.T("ingest.url_success"),
		URL:            req.URL,
		ChunksAdded:    result.ChunksAdded,
		TotalDocuments: result.TotalDocuments,
	})
}

func (h *handler) ingestFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_upload", h.tr.Sprintf("error.validation", "multipart field 'file' is required"), h.logger)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Debug("closing upload", "error", closeErr)
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_upload", h.tr.Sprintf("error.validation", "reading upload failed"), h.logger)
		return
	}

	result, err := h.svc.IngestFile(r.Context(), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{
		Message:        h.tr.T("ingest.file_success"),
		Filename:       header.Filename,
		ChunksAdded:    result.ChunksAdded,
		TotalDocuments: result.TotalDocuments,
	})
}

func (h *handler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", h.tr.Sprintf("error.validation", "malformed JSON body"), h.logger)
		return
	}

	result, err := h.svc.Chat(r.Context(), req.Message, req.ConversationID)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	sources := make([]sourceResponse, 0, len(result.Sources))
	for _, s := range result.Sources {
		sources = append(sources, sourceResponse{
			Content:         s.Content,
			Metadata:        s.Metadata,
			SimilarityScore: s.SimilarityScore,
		})
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:       result.Response,
		ConversationID: result.ConversationID,
		Sources:        sources,
	})
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		TotalDocuments: stats.TotalDocuments,
		CollectionName: stats.CollectionName,
		Status:         stats.Status,
	})
}

func (h *handler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Clear(r.Context()); err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: h.tr.T("knowledge.cleared")})
}
