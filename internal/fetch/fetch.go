// Package fetch obtains raw text for ingestion from remote URLs and
// uploaded files, normalizing everything to UTF-8 text.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"
)

var (
	// ErrFetch indicates the remote URL was unreachable or returned a
	// non-success status.
	ErrFetch = errors.New("url fetch failed")

	// ErrUnsupportedContentType indicates an upload with a content type
	// the system does not ingest.
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrPDFNotSupported is the explicit rejection for application/pdf
	// uploads. Structured document extraction is out of scope for now.
	ErrPDFNotSupported = fmt.Errorf("%w: PDF support has not been added yet", ErrUnsupportedContentType)
)

const (
	// DefaultTimeout bounds a single URL fetch end to end.
	DefaultTimeout = 10 * time.Second

	// maxResponseSize caps fetched bodies to prevent resource exhaustion.
	maxResponseSize = 10 << 20 // 10 MB
)

// Fetcher retrieves text content over HTTP.
type Fetcher struct {
	client *http.Client
}

// New creates a Fetcher with the given timeout. A zero timeout uses
// DefaultTimeout.
func New(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// FromURL issues a GET request and returns the response body as text.
// HTML responses are reduced to their readable article text; any other
// body is returned verbatim. Transport failures and non-2xx statuses
// are reported as ErrFetch with the upstream detail preserved.
func (f *Fetcher) FromURL(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s returned status %d", ErrFetch, rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrFetch, err)
	}

	if isHTML(resp.Header.Get("Content-Type")) {
		if text, ok := extractArticle(body, rawURL); ok {
			return text, nil
		}
		// Extraction failure is not fatal; index the raw markup.
	}

	return string(body), nil
}

// FromFile decodes an uploaded file as text. Only text/plain is ingested;
// application/pdf gets its own rejection so callers can tell "not yet"
// apart from "never".
func (f *Fetcher) FromFile(filename, contentType string, data []byte) (string, error) {
	switch normalizeContentType(contentType) {
	case "text/plain":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: %s is not valid UTF-8 text", ErrUnsupportedContentType, filename)
		}
		return string(data), nil
	case "application/pdf":
		return "", ErrPDFNotSupported
	default:
		return "", fmt.Errorf("%w: %q (only text/plain is supported)", ErrUnsupportedContentType, contentType)
	}
}

// normalizeContentType strips parameters such as charset and lowercases
// the media type. Malformed values are returned as-is so the caller's
// rejection message shows what was actually declared.
func normalizeContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

func isHTML(contentType string) bool {
	mt := normalizeContentType(contentType)
	return mt == "text/html" || mt == "application/xhtml+xml"
}

// extractArticle runs readability extraction over an HTML body.
// Returns ok=false when no usable text was produced.
func extractArticle(body []byte, rawURL string) (string, bool) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		pageURL = nil
	}
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return "", false
	}
	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", false
	}
	return text, true
}
