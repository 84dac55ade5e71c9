package orchestrator

import (
	"context"
	"log"
	"strings"

	"github.com/kilimobot/kilimobot/internal/analysis"
	"github.com/kilimobot/kilimobot/internal/llm"
)

// Intent is a classified conversation topic.
type Intent string

const (
	IntentGreeting  Intent = "greeting"
	IntentCrop      Intent = "crop"
	IntentLivestock Intent = "livestock"
	IntentPest      Intent = "pest"
	IntentWeather   Intent = "weather"
	IntentMarket    Intent = "market"
	IntentExtension Intent = "extension"
	IntentGeneral   Intent = "general"
)

// classifierCategories is the fixed set the AI classifier is constrained to.
var classifierCategories = []Intent{
	IntentGreeting, IntentCrop, IntentLivestock, IntentPest,
	IntentWeather, IntentMarket, IntentExtension,
}

// keywordRules is the ordered fallback: every rule whose terms match
// contributes its intent, in rule order, so a query touching several topics
// yields an explicit multi-intent set with the earliest rule as primary.
var keywordRules = []struct {
	intent Intent
	terms  []string
}{
	{IntentPest, analysis.PestTerms},
	{IntentLivestock, analysis.LivestockTerms},
	{IntentWeather, analysis.WeatherTerms},
	{IntentMarket, analysis.MarketTerms},
	{IntentExtension, analysis.ExtensionTerms},
	{IntentCrop, append([]string{"plant", "grow", "harvest", "seed", "fertilizer", "farm"}, analysis.CropTerms...)},
}

const classifierPrompt = "Classify the farmer's message into exactly one of these categories: " +
	"greeting, crop, livestock, pest, weather, market, extension. " +
	"Reply with the single category word only."

// classifyIntents returns the ordered set of intents for the query. It
// attempts the AI classifier first and falls back to deterministic keyword
// matching whenever the classifier fails or returns an unrecognized token.
func (o *Orchestrator) classifyIntents(ctx context.Context, query string) []Intent {
	if o.classifier != nil {
		if intents := o.classifyAI(ctx, query); len(intents) > 0 {
			return intents
		}
	}
	return classifyKeywords(query)
}

// classifyAI asks the backend for a category token and validates it against
// the fixed set. A token naming several categories (e.g. "pest and crop")
// yields each of them, in category order of appearance in the token.
func (o *Orchestrator) classifyAI(ctx context.Context, query string) []Intent {
	resp, err := o.classifier.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: classifierPrompt},
			{Role: llm.RoleUser, Content: query},
		},
		Temperature: 0,
		MaxTokens:   16,
	})
	if err != nil {
		log.Printf("orchestrator: ai classifier failed, using keyword fallback: %v", err)
		return nil
	}

	token := strings.ToLower(strings.TrimSpace(resp.Content))
	if token == "" {
		return nil
	}

	type match struct {
		intent Intent
		pos    int
	}
	var matches []match
	for _, c := range classifierCategories {
		if pos := strings.Index(token, string(c)); pos >= 0 {
			matches = append(matches, match{intent: c, pos: pos})
		}
	}
	if len(matches) == 0 {
		log.Printf("orchestrator: classifier returned unrecognized token %q", token)
		return nil
	}

	// Order by position in the token so the first-named category is primary.
	for i := 0; i < len(matches); i++ {
		for j := i + 1; j < len(matches); j++ {
			if matches[j].pos < matches[i].pos {
				matches[i], matches[j] = matches[j], matches[i]
			}
		}
	}
	out := make([]Intent, len(matches))
	for i, m := range matches {
		out[i] = m.intent
	}
	return out
}

// classifyKeywords is the deterministic fallback over the shared domain
// vocabularies. It returns every matching intent in rule order, or general
// when nothing matches.
func classifyKeywords(query string) []Intent {
	lower := strings.ToLower(query)

	var out []Intent
	for _, rule := range keywordRules {
		for _, term := range rule.terms {
			if strings.Contains(lower, term) {
				out = append(out, rule.intent)
				break
			}
		}
	}
	if len(out) == 0 {
		return []Intent{IntentGeneral}
	}
	return out
}
