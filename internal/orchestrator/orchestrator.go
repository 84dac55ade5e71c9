// Package orchestrator routes inbound queries: it classifies intent,
// dispatches to one or more topic generators, merges their responses and
// gates translation between the user's language and the English pivot in
// which classification and generation always operate.
package orchestrator

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/kilimobot/kilimobot/internal/agents"
	"github.com/kilimobot/kilimobot/internal/analysis"
	"github.com/kilimobot/kilimobot/internal/config"
	"github.com/kilimobot/kilimobot/internal/llm"
)

// mergeThreshold: secondary responses below or at this confidence are
// dropped from the merged answer.
const mergeThreshold = 0.5

const (
	greetingFirstContact = "Hello! I'm Kilimobot, your farming assistant. " +
		"Ask me anything about crops, livestock, pests and diseases, weather or market prices."
	greetingContinuation = "Welcome back! What would you like to know about your farm today?"
)

// Orchestrator coordinates classification, generation and translation. It
// is constructed once at process start with its collaborators injected.
type Orchestrator struct {
	classifier llm.Client
	translator *agents.Translator
	generators []agents.Generator
	byIntent   map[Intent][]int
}

// New creates an orchestrator. Generators are dispatched in the order
// given; the first generator doubles as the default topic when no intent
// matches any generator.
func New(classifier llm.Client, translator *agents.Translator, generators []agents.Generator) *Orchestrator {
	o := &Orchestrator{
		classifier: classifier,
		translator: translator,
		generators: generators,
		byIntent:   make(map[Intent][]int),
	}

	// Explicit intent-to-generator table replaces ad-hoc substring
	// matching: each intent maps to the generators whose topic it names.
	for i, g := range generators {
		switch g.Name() {
		case agents.TopicCrop:
			o.byIntent[IntentCrop] = append(o.byIntent[IntentCrop], i)
		case agents.TopicLivestock:
			o.byIntent[IntentLivestock] = append(o.byIntent[IntentLivestock], i)
		case agents.TopicPest:
			o.byIntent[IntentPest] = append(o.byIntent[IntentPest], i)
		case agents.TopicClimate:
			o.byIntent[IntentWeather] = append(o.byIntent[IntentWeather], i)
		case agents.TopicMarket:
			o.byIntent[IntentMarket] = append(o.byIntent[IntentMarket], i)
		case agents.TopicExtension:
			o.byIntent[IntentExtension] = append(o.byIntent[IntentExtension], i)
		}
	}
	return o
}

// ProcessQuery handles one inbound query end to end and returns the reply
// text in the requested language. It never panics through to the caller:
// any unhandled failure becomes the fixed apology.
func (o *Orchestrator) ProcessQuery(ctx context.Context, text string, uc agents.UserContext, history []llm.Message, lang config.Language) (reply string) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("orchestrator: recovered from panic: %v", rec)
			reply = o.toTarget(ctx, agents.Apology, lang)
		}
	}()

	// Greeting short-circuit before any translation or classification.
	if isGreeting(text) {
		return o.toTarget(ctx, o.greeting(history), lang)
	}

	// Pivot translation: classification and generation always operate in
	// English.
	pivot := text
	if lang != config.LanguageEnglish {
		pivot = o.translator.Translate(ctx, text, lang, config.LanguageEnglish)
	}

	intents := o.classifyIntents(ctx, pivot)

	// The classifier can surface a greeting the heuristic missed, e.g.
	// one that only became apparent after translation.
	for _, in := range intents {
		if in == IntentGreeting {
			return o.toTarget(ctx, o.greeting(history), lang)
		}
	}

	responses := o.dispatch(ctx, intents, pivot, uc, history)
	merged := merge(responses)

	return o.toTarget(ctx, merged, lang)
}

// dispatch fans the query out to every generator the intent set names,
// preserving dispatch order and deduplicating. An intent set matching no
// generator falls back to the first (crop) generator.
func (o *Orchestrator) dispatch(ctx context.Context, intents []Intent, query string, uc agents.UserContext, history []llm.Message) []agents.Response {
	var order []int
	seen := make(map[int]bool)
	for _, in := range intents {
		for _, idx := range o.byIntent[in] {
			if !seen[idx] {
				seen[idx] = true
				order = append(order, idx)
			}
		}
	}
	if len(order) == 0 {
		order = []int{0}
	}

	responses := make([]agents.Response, len(order))
	var wg sync.WaitGroup
	for i, idx := range order {
		wg.Add(1)
		go func(i, idx int) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					log.Printf("orchestrator: generator %s panicked: %v", o.generators[idx].Name(), rec)
					responses[i] = agents.Response{
						Generator:  o.generators[idx].Name(),
						Text:       agents.Apology,
						Confidence: 0,
						Metadata:   map[string]string{"error": "panic"},
					}
				}
			}()
			responses[i] = o.generators[idx].Process(ctx, query, uc, history)
		}(i, idx)
	}
	wg.Wait()

	return responses
}

// merge combines responses: the primary (first by dispatch order) text is
// always included; later responses are appended only above the confidence
// threshold, so low-confidence secondary opinions never dilute the answer.
func merge(responses []agents.Response) string {
	if len(responses) == 0 {
		return agents.Apology
	}

	parts := []string{responses[0].Text}
	for _, r := range responses[1:] {
		if r.Confidence > mergeThreshold {
			parts = append(parts, r.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (o *Orchestrator) greeting(history []llm.Message) string {
	if len(history) > 0 {
		return greetingContinuation
	}
	return greetingFirstContact
}

// toTarget translates output to the requested language when it differs
// from the pivot.
func (o *Orchestrator) toTarget(ctx context.Context, text string, lang config.Language) string {
	if lang == config.LanguageEnglish {
		return text
	}
	return o.translator.Translate(ctx, text, config.LanguageEnglish, lang)
}

// isGreeting reports whether the text is a pure greeting: short, contains a
// greeting token and mentions no domain keyword.
func isGreeting(text string) bool {
	if len(strings.Fields(text)) > 4 {
		return false
	}
	if !analysis.ContainsGreeting(text) {
		return false
	}
	return len(analysis.Analyze(text).Keywords) == 0
}
