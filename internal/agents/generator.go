// Package agents implements the topic generators: components that turn a
// validated query plus retrieved knowledge into natural-language advice with
// a confidence score. All topics share one pipeline parameterized by a small
// strategy value; only the prompt framing, the structured data consulted and
// the opportunistic enrichment differ per topic.
package agents

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kilimobot/kilimobot/internal/analysis"
	"github.com/kilimobot/kilimobot/internal/cache"
	"github.com/kilimobot/kilimobot/internal/knowledge"
	"github.com/kilimobot/kilimobot/internal/llm"
)

// enrichTimeout bounds opportunistic external lookups (soil, weather,
// market). On expiry the pipeline proceeds without that enrichment.
const enrichTimeout = 5 * time.Second

// maxHistoryTurns is how many trailing conversation turns are rendered into
// the prompt.
const maxHistoryTurns = 3

// Strategy is the topic-specific part of a generator.
type Strategy struct {
	// Name is the topic name ("crop", "pest", ...).
	Name string
	// Framing opens the system prompt and sets the advisor persona.
	Framing string
	// StructuredData returns topic data already available synchronously,
	// rendered as prompt lines. May be nil.
	StructuredData func(query string, uc UserContext) []string
	// Enrich performs an opportunistic external lookup. It runs under
	// enrichTimeout and its failure is never visible to the caller. May be
	// nil.
	Enrich func(ctx context.Context, query string, uc UserContext) (string, error)
}

// Generator produces advice for one topic.
type Generator interface {
	Name() string
	Process(ctx context.Context, query string, uc UserContext, history []llm.Message) Response
}

// Agent is the shared generator implementation.
type Agent struct {
	strategy  Strategy
	client    llm.Client
	retriever *knowledge.Retriever
	cache     cache.Cache
	temp      float64
}

// New creates a generator from a strategy and its collaborators. The cache
// may be nil to disable caching entirely.
func New(strategy Strategy, client llm.Client, retriever *knowledge.Retriever, c cache.Cache, temperature float64) *Agent {
	return &Agent{
		strategy:  strategy,
		client:    client,
		retriever: retriever,
		cache:     c,
		temp:      temperature,
	}
}

func (a *Agent) Name() string { return a.strategy.Name }

// Process runs the shared pipeline: validate, normalize, analyze, retrieve,
// check cache, generate, score. It never returns an error; every failure
// becomes an apology response with confidence 0.
func (a *Agent) Process(ctx context.Context, query string, uc UserContext, history []llm.Message) Response {
	vr := analysis.Validate(query)
	if !vr.Valid {
		return Response{
			Generator:  a.strategy.Name,
			Text:       Apology,
			Confidence: 0,
			Metadata: map[string]string{
				"error":      "invalid_input",
				"validation": strings.Join(vr.Errors, "; "),
			},
		}
	}

	normalized := analysis.Normalize(vr.Sanitized)
	qa := analysis.Analyze(normalized)

	rc := knowledge.Context{
		Crop:      uc.Crop,
		Region:    uc.Region,
		SoilType:  uc.SoilType,
		FarmStage: uc.FarmStage,
	}
	passages := a.retriever.Retrieve(ctx, normalized, rc)

	confidence := Confidence(len(passages), qa.Complexity, len(qa.Keywords))

	// Conversational state makes cached answers incorrect, so caching only
	// applies to history-free calls.
	cacheable := a.cache != nil && len(history) == 0
	fp := cache.Fingerprint{Crop: uc.Crop, Region: uc.Region, FarmStage: uc.FarmStage}
	if cacheable {
		if text, ok := a.cache.Get(ctx, normalized, fp); ok {
			return Response{
				Generator:  a.strategy.Name,
				Text:       text,
				Confidence: confidence,
				Metadata:   map[string]string{"cached": "true"},
			}
		}
	}

	text, err := a.generate(ctx, normalized, uc, passages, history, qa)
	if err != nil {
		log.Printf("agents: %s generation failed: %v", a.strategy.Name, err)
		return Response{
			Generator:  a.strategy.Name,
			Text:       Apology,
			Confidence: 0,
			Metadata:   map[string]string{"error": "generation_failed"},
		}
	}

	if cacheable {
		a.cache.Set(ctx, normalized, text, fp)
	}

	return Response{
		Generator:  a.strategy.Name,
		Text:       text,
		Confidence: confidence,
		Metadata: map[string]string{
			"passages": fmt.Sprintf("%d", len(passages)),
			"urgency":  string(qa.Urgency),
		},
	}
}

func (a *Agent) generate(ctx context.Context, query string, uc UserContext, passages []string, history []llm.Message, qa analysis.Analysis) (string, error) {
	system := a.buildSystemPrompt(ctx, query, uc, passages, qa)

	messages := []llm.Message{{Role: llm.RoleSystem, Content: system}}
	messages = append(messages, trailingTurns(history, maxHistoryTurns)...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: query})

	resp, err := a.client.Complete(ctx, llm.Request{
		Messages:    messages,
		Temperature: a.temp,
		MaxTokens:   qa.Length.Band().Max * 2,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Content) == "" {
		return "", fmt.Errorf("empty completion from %s", a.client.Name())
	}
	return resp.Content, nil
}

func (a *Agent) buildSystemPrompt(ctx context.Context, query string, uc UserContext, passages []string, qa analysis.Analysis) string {
	var b strings.Builder

	b.WriteString(a.strategy.Framing)
	b.WriteString("\n\n")

	if line := contextLine(uc); line != "" {
		b.WriteString("Farmer context: " + line + "\n\n")
	}

	if a.strategy.StructuredData != nil {
		if lines := a.strategy.StructuredData(query, uc); len(lines) > 0 {
			b.WriteString("Reference data:\n")
			for _, l := range lines {
				b.WriteString("- " + l + "\n")
			}
			b.WriteString("\n")
		}
	}

	if len(passages) > 0 {
		b.WriteString("Relevant knowledge:\n")
		for _, p := range passages {
			b.WriteString("- " + p + "\n")
		}
		b.WriteString("\n")
	}

	if a.strategy.Enrich != nil {
		if extra := a.enrich(ctx, query, uc); extra != "" {
			b.WriteString("Current conditions: " + extra + "\n\n")
		}
	}

	band := qa.Length.Band()
	fmt.Fprintf(&b, "Answer in roughly %d words (between %d and %d).", band.Target, band.Min, band.Max)
	if qa.Urgency == analysis.UrgencyHigh {
		b.WriteString(" This is urgent: lead with the immediate action to take and advise contacting a veterinary or extension officer.")
	}
	b.WriteString(" Use plain language suitable for a smallholder farmer reading on a phone.")

	return b.String()
}

// enrich runs the strategy's external lookup under a strict timeout; a slow
// or failing lookup yields nothing rather than an error.
func (a *Agent) enrich(ctx context.Context, query string, uc UserContext) string {
	enrichCtx, cancel := context.WithTimeout(ctx, enrichTimeout)
	defer cancel()

	extra, err := a.strategy.Enrich(enrichCtx, query, uc)
	if err != nil {
		log.Printf("agents: %s enrichment skipped: %v", a.strategy.Name, err)
		return ""
	}
	return extra
}

func contextLine(uc UserContext) string {
	var parts []string
	if uc.Name != "" {
		parts = append(parts, "name "+uc.Name)
	}
	if uc.Region != "" {
		parts = append(parts, "located in "+uc.Region)
	}
	if uc.Crop != "" {
		parts = append(parts, "growing "+uc.Crop)
	}
	if uc.SoilType != "" {
		parts = append(parts, uc.SoilType+" soil")
	}
	if uc.FarmStage != "" {
		parts = append(parts, "currently "+uc.FarmStage)
	}
	return strings.Join(parts, ", ")
}

// trailingTurns returns the last n history turns in order.
func trailingTurns(history []llm.Message, n int) []llm.Message {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
