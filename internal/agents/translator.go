package agents

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/kilimobot/kilimobot/internal/config"
	"github.com/kilimobot/kilimobot/internal/llm"
)

// translationTemperature is deliberately low: translation should be
// faithful, not creative.
const translationTemperature = 0.1

var languageNames = map[config.Language]string{
	config.LanguageEnglish: "English",
	config.LanguageSwahili: "Kiswahili",
}

// Translator converts text between the pivot and secondary languages. It is
// a plain utility invoked directly by the orchestrator, not a generator:
// no caching, no retrieval.
type Translator struct {
	client llm.Client
}

// NewTranslator creates a translator over the given backend.
func NewTranslator(client llm.Client) *Translator {
	return &Translator{client: client}
}

// Translate converts text from one language to another. On any failure the
// original text is returned unchanged so translation can never block a
// response.
func (t *Translator) Translate(ctx context.Context, text string, from, to config.Language) string {
	if from == to || strings.TrimSpace(text) == "" {
		return text
	}

	fromName, toName := languageNames[from], languageNames[to]
	resp, err := t.client.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{
				Role: llm.RoleSystem,
				Content: fmt.Sprintf(
					"Translate the user's message from %s to %s. Reply with the translation only, no commentary.",
					fromName, toName),
			},
			{Role: llm.RoleUser, Content: text},
		},
		Temperature: translationTemperature,
	})
	if err != nil {
		log.Printf("agents: translation %s->%s failed, returning original: %v", from, to, err)
		return text
	}

	translated := strings.TrimSpace(resp.Content)
	if translated == "" {
		return text
	}
	return translated
}
