package i18n

var englishMessages = map[string]string{
	// Service
	"welcome": "Welcome to the AnswerDesk API!",

	// Ingestion
	"ingest.text_success": "Text added successfully",
	"ingest.url_success":  "URL content added successfully",
	"ingest.file_success": "File added successfully",

	// Knowledge base
	"knowledge.cleared": "Database cleared successfully",

	// Errors
	"error.validation":       "Invalid request: %s",
	"error.fetch":            "URL fetch failed: %s",
	"error.unsupported_file": "Only text (.txt) files are supported",
	"error.pdf_unsupported":  "PDF support has not been added yet",
	"error.embedding":        "Embedding generation failed",
	"error.generation":       "Response generation failed",
	"error.internal":         "Internal server error",
	"error.rate_limited":     "Too many requests, please slow down",
	"error.not_found":        "Not found",
}
