package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kilimobot/kilimobot/internal/agents"
	"github.com/kilimobot/kilimobot/internal/config"
	"github.com/kilimobot/kilimobot/internal/llm"
)

// stubGenerator records invocations and returns a scripted response.
type stubGenerator struct {
	name       string
	text       string
	confidence float64
	calls      int
	panics     bool
}

func (s *stubGenerator) Name() string { return s.name }

func (s *stubGenerator) Process(ctx context.Context, query string, uc agents.UserContext, history []llm.Message) agents.Response {
	s.calls++
	if s.panics {
		panic("generator exploded")
	}
	return agents.Response{Generator: s.name, Text: s.text, Confidence: s.confidence}
}

// echoTranslator translates by tagging the text with the target language,
// making translation calls observable in assertions.
type echoTranslator struct{}

func (echoTranslator) Name() string { return "echo" }

func (e echoTranslator) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	system := req.Messages[0].Content
	text := req.Messages[len(req.Messages)-1].Content
	switch {
	case strings.Contains(system, "to English"):
		return &llm.Response{Content: "[en]" + text}, nil
	case strings.Contains(system, "to Kiswahili"):
		return &llm.Response{Content: "[sw]" + text}, nil
	}
	return &llm.Response{Content: text}, nil
}

// failingClassifier forces the keyword fallback path.
type failingClassifier struct{}

func (failingClassifier) Name() string { return "down" }

func (failingClassifier) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return nil, errors.New("classifier unavailable")
}

// tokenClassifier returns a fixed classification token.
type tokenClassifier struct{ token string }

func (t tokenClassifier) Name() string { return "token" }

func (t tokenClassifier) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return &llm.Response{Content: t.token}, nil
}

func defaultGenerators() (crop, livestock, pest, climate, market, extension *stubGenerator, all []agents.Generator) {
	crop = &stubGenerator{name: agents.TopicCrop, text: "crop advice", confidence: 0.8}
	livestock = &stubGenerator{name: agents.TopicLivestock, text: "livestock advice", confidence: 0.8}
	pest = &stubGenerator{name: agents.TopicPest, text: "pest advice", confidence: 0.8}
	climate = &stubGenerator{name: agents.TopicClimate, text: "climate advice", confidence: 0.8}
	market = &stubGenerator{name: agents.TopicMarket, text: "market advice", confidence: 0.8}
	extension = &stubGenerator{name: agents.TopicExtension, text: "extension advice", confidence: 0.8}
	all = []agents.Generator{crop, livestock, pest, climate, market, extension}
	return
}

func newOrchestrator(classifier llm.Client, generators []agents.Generator) *Orchestrator {
	return New(classifier, agents.NewTranslator(echoTranslator{}), generators)
}

func TestGreetingShortCircuit(t *testing.T) {
	_, _, _, _, _, _, all := defaultGenerators()
	o := newOrchestrator(failingClassifier{}, all)
	ctx := context.Background()

	first := o.ProcessQuery(ctx, "hello", agents.UserContext{}, nil, config.LanguageEnglish)
	returning := o.ProcessQuery(ctx, "hello", agents.UserContext{},
		[]llm.Message{{Role: llm.RoleUser, Content: "earlier turn"}}, config.LanguageEnglish)

	if first == returning {
		t.Error("first-contact and continuation greetings should differ")
	}
	if !strings.Contains(first, "Kilimobot") {
		t.Errorf("first greeting = %q", first)
	}
}

func TestGreetingNotTriggeredByDomainQuery(t *testing.T) {
	crop, _, _, _, _, _, all := defaultGenerators()
	o := newOrchestrator(failingClassifier{}, all)

	got := o.ProcessQuery(context.Background(), "hi, my maize", agents.UserContext{}, nil, config.LanguageEnglish)
	if got != "crop advice" {
		t.Errorf("reply = %q, want crop advice", got)
	}
	if crop.calls != 1 {
		t.Errorf("crop generator calls = %d, want 1", crop.calls)
	}
}

func TestKeywordFallbackPest(t *testing.T) {
	intents := classifyKeywords("What pests affect maize?")
	if len(intents) == 0 || intents[0] != IntentPest {
		t.Errorf("intents = %v, want pest primary", intents)
	}
}

func TestKeywordFallbackGeneral(t *testing.T) {
	intents := classifyKeywords("tell me a story")
	if len(intents) != 1 || intents[0] != IntentGeneral {
		t.Errorf("intents = %v, want [general]", intents)
	}
}

func TestSingleGeneratorVerbatim(t *testing.T) {
	crop, _, pest, _, _, _, all := defaultGenerators()
	o := newOrchestrator(failingClassifier{}, all)

	got := o.ProcessQuery(context.Background(), "I need advice on growing maize",
		agents.UserContext{}, nil, config.LanguageEnglish)
	if got != "crop advice" {
		t.Errorf("reply = %q, want single crop response verbatim", got)
	}
	if crop.calls != 1 || pest.calls != 0 {
		t.Errorf("calls: crop %d pest %d, want 1 and 0", crop.calls, pest.calls)
	}
}

func TestMultiIntentDispatchAndMerge(t *testing.T) {
	crop, _, pest, _, _, _, all := defaultGenerators()
	o := newOrchestrator(failingClassifier{}, all)

	got := o.ProcessQuery(context.Background(), "my maize leaves have holes",
		agents.UserContext{}, nil, config.LanguageEnglish)

	if crop.calls != 1 || pest.calls != 1 {
		t.Fatalf("calls: crop %d pest %d, want both dispatched", crop.calls, pest.calls)
	}
	// Pest rule precedes crop, so pest is primary.
	if !strings.HasPrefix(got, "pest advice") {
		t.Errorf("reply = %q, want pest advice first", got)
	}
	if !strings.Contains(got, "crop advice") {
		t.Errorf("reply = %q, want crop advice appended", got)
	}
}

func TestMergeDropsLowConfidenceSecondary(t *testing.T) {
	crop, _, pest, _, _, _, all := defaultGenerators()
	crop.confidence = 0.4
	o := newOrchestrator(failingClassifier{}, all)

	got := o.ProcessQuery(context.Background(), "my maize leaves have holes",
		agents.UserContext{}, nil, config.LanguageEnglish)
	if got != "pest advice" {
		t.Errorf("reply = %q, want pest advice alone", got)
	}
	if pest.calls != 1 || crop.calls != 1 {
		t.Error("both generators should still run")
	}
}

func TestMergeKeepsZeroConfidencePrimary(t *testing.T) {
	merged := merge([]agents.Response{
		{Text: agents.Apology, Confidence: 0},
		{Text: "secondary", Confidence: 0.9},
	})
	if !strings.HasPrefix(merged, agents.Apology) {
		t.Errorf("merged = %q, primary is always kept", merged)
	}
	if !strings.Contains(merged, "secondary") {
		t.Errorf("merged = %q, confident secondary should be appended", merged)
	}
}

func TestAIClassifierToken(t *testing.T) {
	_, livestock, _, _, _, _, all := defaultGenerators()
	o := newOrchestrator(tokenClassifier{token: "Livestock"}, all)

	got := o.ProcessQuery(context.Background(), "my cow is unwell",
		agents.UserContext{}, nil, config.LanguageEnglish)
	if got != "livestock advice" {
		t.Errorf("reply = %q", got)
	}
	if livestock.calls != 1 {
		t.Errorf("livestock calls = %d, want 1", livestock.calls)
	}
}

func TestAIClassifierInvalidTokenFallsBack(t *testing.T) {
	_, _, pest, _, _, _, all := defaultGenerators()
	o := newOrchestrator(tokenClassifier{token: "banana-bread"}, all)

	o.ProcessQuery(context.Background(), "aphids on my kale",
		agents.UserContext{}, nil, config.LanguageEnglish)
	if pest.calls != 1 {
		t.Errorf("pest calls = %d, want keyword fallback dispatch", pest.calls)
	}
}

func TestWeatherIntentDispatchesClimate(t *testing.T) {
	_, _, _, climate, _, _, all := defaultGenerators()
	o := newOrchestrator(failingClassifier{}, all)

	got := o.ProcessQuery(context.Background(), "will the rains come early this season",
		agents.UserContext{}, nil, config.LanguageEnglish)
	if climate.calls != 1 {
		t.Errorf("climate calls = %d, want 1", climate.calls)
	}
	if !strings.Contains(got, "climate advice") {
		t.Errorf("reply = %q", got)
	}
}

func TestUnmatchedIntentDefaultsToCrop(t *testing.T) {
	crop, _, _, _, _, _, all := defaultGenerators()
	o := newOrchestrator(failingClassifier{}, all)

	got := o.ProcessQuery(context.Background(), "tell me a story",
		agents.UserContext{}, nil, config.LanguageEnglish)
	if crop.calls != 1 {
		t.Errorf("crop calls = %d, want default dispatch", crop.calls)
	}
	if got != "crop advice" {
		t.Errorf("reply = %q", got)
	}
}

func TestSecondaryLanguageRoundTrip(t *testing.T) {
	crop, _, _, _, _, _, all := defaultGenerators()
	o := newOrchestrator(failingClassifier{}, all)

	got := o.ProcessQuery(context.Background(), "nataka ushauri wa kupanda mahindi na maize",
		agents.UserContext{}, nil, config.LanguageSwahili)

	// Input was pivot-translated, generation ran, output was translated back.
	if crop.calls != 1 {
		t.Fatalf("crop calls = %d, want 1", crop.calls)
	}
	if !strings.HasPrefix(got, "[sw]") {
		t.Errorf("reply = %q, want output translated to Kiswahili", got)
	}
}

func TestGeneratorPanicBecomesApology(t *testing.T) {
	crop, _, _, _, _, _, all := defaultGenerators()
	crop.panics = true
	o := newOrchestrator(failingClassifier{}, all)

	got := o.ProcessQuery(context.Background(), "I need advice on growing maize",
		agents.UserContext{}, nil, config.LanguageEnglish)
	if got != agents.Apology {
		t.Errorf("reply = %q, want apology", got)
	}
}
