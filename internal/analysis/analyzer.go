package analysis

import "strings"

// Complexity grades how involved a query is.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// QueryType categorizes the grammatical shape of a query.
type QueryType string

const (
	TypeGreeting  QueryType = "greeting"
	TypeCommand   QueryType = "command"
	TypeQuestion  QueryType = "question"
	TypeStatement QueryType = "statement"
)

// Urgency grades how quickly a query needs attention.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// ResponseLength is the recommended verbosity for the answer.
type ResponseLength string

const (
	LengthShort  ResponseLength = "short"
	LengthMedium ResponseLength = "medium"
	LengthLong   ResponseLength = "long"
)

// WordBand is the word-count band a ResponseLength maps to. Generators use
// it to steer verbosity.
type WordBand struct {
	Target int
	Min    int
	Max    int
}

// Band returns the word-count band for the length.
func (l ResponseLength) Band() WordBand {
	switch l {
	case LengthShort:
		return WordBand{Target: 50, Min: 20, Max: 100}
	case LengthLong:
		return WordBand{Target: 500, Min: 300, Max: 800}
	default:
		return WordBand{Target: 200, Min: 100, Max: 300}
	}
}

// Analysis is the result of analyzing a query. It is computed purely from
// the text: same input, same output.
type Analysis struct {
	Complexity     Complexity
	Type           QueryType
	RequiresDetail bool
	Length         ResponseLength
	Urgency        Urgency
	Keywords       []string
}

var commandPhrases = []string{
	"tell me", "explain", "show me", "give me", "list", "describe", "help me",
}

var questionWords = []string{
	"what", "how", "why", "when", "where", "which", "who",
	"can i", "should i", "is it", "are there", "do i",
}

var detailPhrases = []string{
	"explain", "guide", "step by step", "step-by-step", "in detail",
	"detailed", "how do i", "how to", "procedure", "process for",
}

var complexPhrases = []string{
	"compare", "comparison", "versus", " vs ", "comprehensive",
	"step by step", "step-by-step", "all the", "everything about",
}

// Analyze inspects raw query text and returns its analysis. It performs no
// I/O and never fails: unmatched input falls through to the defaults
// (statement, moderate, low urgency, medium length).
func Analyze(text string) Analysis {
	lower := strings.ToLower(strings.TrimSpace(text))
	words := strings.Fields(lower)

	keywords := matchKeywords(lower)

	a := Analysis{
		Type:     classifyType(lower, len(words)),
		Keywords: keywords,
	}

	a.Complexity = classifyComplexity(lower, len(words), len(keywords))
	a.RequiresDetail = a.Complexity == ComplexityComplex || containsAny(lower, detailPhrases)
	a.Urgency = classifyUrgency(lower)

	switch {
	case a.Complexity == ComplexityComplex || a.RequiresDetail:
		a.Length = LengthLong
	case a.Complexity == ComplexitySimple:
		a.Length = LengthShort
	default:
		a.Length = LengthMedium
	}

	return a
}

// ContainsGreeting reports whether the text contains a greeting token as a
// whole word. Substring matching would trip on words like "this" containing
// "hi", so greetings alone match on word boundaries.
func ContainsGreeting(text string) bool {
	padded := " " + strings.ToLower(strings.TrimSpace(text)) + " "
	padded = strings.Map(func(r rune) rune {
		switch r {
		case '!', '?', '.', ',':
			return ' '
		}
		return r
	}, padded)
	for _, g := range GreetingTerms {
		if strings.Contains(padded, " "+g+" ") {
			return true
		}
	}
	return false
}

func classifyType(lower string, wordCount int) QueryType {
	if wordCount <= 4 && ContainsGreeting(lower) {
		return TypeGreeting
	}
	if containsAny(lower, commandPhrases) {
		return TypeCommand
	}
	if strings.Contains(lower, "?") {
		return TypeQuestion
	}
	for _, w := range questionWords {
		if strings.HasPrefix(lower, w+" ") || strings.Contains(lower, " "+w+" ") {
			return TypeQuestion
		}
	}
	return TypeStatement
}

func classifyComplexity(lower string, wordCount, keywordCount int) Complexity {
	if wordCount > 20 || keywordCount > 3 || containsAny(lower, complexPhrases) {
		return ComplexityComplex
	}
	if wordCount <= 5 && keywordCount <= 1 {
		return ComplexitySimple
	}
	return ComplexityModerate
}

func classifyUrgency(lower string) Urgency {
	if containsAny(lower, EmergencyTerms) {
		return UrgencyHigh
	}
	if containsAny(lower, HealthTerms) {
		return UrgencyMedium
	}
	return UrgencyLow
}

func matchKeywords(lower string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, term := range domainTerms {
		if strings.Contains(lower, term) && !seen[term] {
			seen[term] = true
			out = append(out, term)
		}
	}
	return out
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
