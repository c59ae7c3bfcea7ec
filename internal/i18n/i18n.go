// Package i18n holds the user-facing message catalog, keyed by locale.
// API handlers look up response and error messages here instead of
// hardcoding English strings at each call site.
package i18n

import (
	"fmt"
	"strings"
)

// Supported languages.
const (
	LangEN   = "en"
	LangZhTW = "zh-TW"
)

// Translator resolves message keys for one language. Missing keys fall
// back to English, then to the key itself.
type Translator struct {
	lang string
}

// New returns a Translator for the given language code. Unrecognized
// codes fall back to English.
func New(lang string) *Translator {
	return &Translator{lang: normalize(lang)}
}

// normalize maps common language code variations to a supported locale.
func normalize(lang string) string {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "zh-tw", "zh_tw", "zh-hant", "zh":
		return LangZhTW
	default:
		return LangEN
	}
}

// Language returns the resolved language code.
func (t *Translator) Language() string {
	return t.lang
}

// T returns the translated message for the given key.
func (t *Translator) T(key string) string {
	if msg, ok := messages[t.lang][key]; ok {
		return msg
	}
	if msg, ok := messages[LangEN][key]; ok {
		return msg
	}
	return key
}

// Sprintf returns the translated and formatted message.
func (t *Translator) Sprintf(key string, args ...any) string {
	return fmt.Sprintf(t.T(key), args...)
}

// SupportedLanguages returns the supported language codes.
func SupportedLanguages() []string {
	return []string{LangEN, LangZhTW}
}

var messages = map[string]map[string]string{
	LangEN:   englishMessages,
	LangZhTW: chineseMessages,
}
