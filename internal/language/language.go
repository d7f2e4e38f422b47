package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// wordForms maps full English language names to ISO 639-1 codes for the
// inputs callers are known to send; BCP 47 parsing covers everything else.
var wordForms = map[string]string{
	"mongolian": "mn",
	"english":   "en",
	"chinese":   "zh",
	"japanese":  "ja",
	"korean":    "ko",
	"russian":   "ru",
	"spanish":   "es",
	"french":    "fr",
	"german":    "de",
}

// Normalize converts a language identifier (ISO code, BCP 47 tag, or full
// English name like "mongolian") to its ISO 639-1 code. Unrecognized input
// returns the empty string.
func Normalize(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	if code, ok := wordForms[value]; ok {
		return code
	}
	tag, err := language.Parse(value)
	if err != nil {
		return ""
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return ""
	}
	return base.String()
}

// Matches reports whether two language identifiers denote the same language.
// Two unrecognized values never match.
func Matches(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	return na != "" && na == nb
}

// DisplayName returns a human-readable English name for a language
// identifier, or "Unknown" when the input is empty or unrecognized.
func DisplayName(value string) string {
	code := Normalize(value)
	if code == "" {
		return "Unknown"
	}
	tag := language.Make(code)
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return strings.ToUpper(code)
}
