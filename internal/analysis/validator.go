package analysis

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxMessageLength is the longest message accepted before truncation.
const MaxMessageLength = 2000

// ValidationResult is the outcome of validating raw user input. Warnings
// never make the input invalid; only emptiness does.
type ValidationResult struct {
	Sanitized string
	Valid     bool
	Errors    []string
	Warnings  []string
}

var (
	scriptTagRe    = regexp.MustCompile(`(?is)<script[^>]*>.*?</script\s*>|<script[^>]*/?>`)
	eventHandlerRe = regexp.MustCompile(`(?i)\bon\w+\s*=\s*("[^"]*"|'[^']*'|\S+)`)
	javascriptRe   = regexp.MustCompile(`(?i)javascript\s*:`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	repeatPunctRe  = regexp.MustCompile(`[!?.,]{2,}`)
)

// TruncateBytes cuts s to at most max bytes without splitting a UTF-8 rune.
func TruncateBytes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// suspiciousPatterns are flagged as warnings without rejecting the input.
// Output is plain text to messaging channels, so sanitation here is
// defense-in-depth rather than a security boundary.
var suspiciousPatterns = []string{
	"../", "..\\", "$(", "`", "eval(", "exec(", "drop table", "; rm ",
}

// Validate trims, bounds and sanitizes raw user text. It is total: every
// input produces a result, and only empty-after-trim input is invalid.
func Validate(text string) ValidationResult {
	res := ValidationResult{}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		res.Errors = append(res.Errors, "message is empty")
		return res
	}

	if len(trimmed) > MaxMessageLength {
		trimmed = TruncateBytes(trimmed, MaxMessageLength)
		res.Warnings = append(res.Warnings, "message truncated to maximum length")
	}

	sanitized := scriptTagRe.ReplaceAllString(trimmed, "")
	sanitized = eventHandlerRe.ReplaceAllString(sanitized, "")
	sanitized = javascriptRe.ReplaceAllString(sanitized, "")

	lower := strings.ToLower(sanitized)
	for _, p := range suspiciousPatterns {
		if strings.Contains(lower, p) {
			res.Warnings = append(res.Warnings, "message contains suspicious pattern")
			break
		}
	}

	sanitized = strings.TrimSpace(whitespaceRe.ReplaceAllString(sanitized, " "))
	if sanitized == "" {
		res.Errors = append(res.Errors, "message is empty after sanitization")
		return res
	}

	res.Sanitized = sanitized
	res.Valid = true
	return res
}

// typoCorrections maps common domain-term misspellings to the correct form.
// Keys are matched as whole words.
var typoCorrections = map[string]string{
	"maze":       "maize",
	"maiz":       "maize",
	"tomatoe":    "tomato",
	"catle":      "cattle",
	"chiken":     "chicken",
	"chickens":   "chicken",
	"feritlizer": "fertilizer",
	"fertilzer":  "fertilizer",
	"desease":    "disease",
	"disese":     "disease",
	"wether":     "weather",
	"pestiside":  "pesticide",
	"irigation":  "irrigation",
}

// Normalize applies typo corrections and collapses repeated punctuation and
// whitespace. Like Validate it is total and side-effect-free.
func Normalize(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		bare := strings.ToLower(strings.Trim(w, ".,!?"))
		if fixed, ok := typoCorrections[bare]; ok {
			words[i] = strings.Replace(w, strings.Trim(w, ".,!?"), fixed, 1)
		}
	}
	out := strings.Join(words, " ")
	out = repeatPunctRe.ReplaceAllStringFunc(out, func(s string) string { return s[:1] })
	return out
}
