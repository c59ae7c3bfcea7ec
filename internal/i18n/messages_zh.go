package i18n

var chineseMessages = map[string]string{
	// Service
	"welcome": "歡迎使用 AnswerDesk API！",

	// Ingestion
	"ingest.text_success": "文字已成功新增",
	"ingest.url_success":  "網址內容已成功新增",
	"ingest.file_success": "檔案已成功新增",

	// Knowledge base
	"knowledge.cleared": "資料庫已成功清除",

	// Errors
	"error.validation":       "無效的請求：%s",
	"error.fetch":            "網址抓取失敗：%s",
	"error.unsupported_file": "僅支援純文字（.txt）檔案",
	"error.pdf_unsupported":  "尚未支援 PDF 檔案",
	"error.embedding":        "向量嵌入產生失敗",
	"error.generation":       "回應產生失敗",
	"error.internal":         "內部伺服器錯誤",
	"error.rate_limited":     "請求過於頻繁，請稍後再試",
	"error.not_found":        "找不到資源",
}
