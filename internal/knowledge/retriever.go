// Package knowledge blends always-available local structured data with an
// optional vector-similarity search. Retrieval is best-effort by contract:
// the external source may be absent, misconfigured or failing, and callers
// still get local passages with no error surfaced.
package knowledge

import (
	"context"
	"log"
	"time"

	"github.com/kilimobot/kilimobot/internal/vectordb"
)

// externalTimeout bounds the vector search so a slow external source can
// never stall the request pipeline.
const externalTimeout = 5 * time.Second

// Context carries the per-request fields retrieval keys on.
type Context struct {
	Crop      string
	Region    string
	SoilType  string
	FarmStage string
}

// Retriever is the knowledge retrieval boundary consumed by generators.
type Retriever struct {
	store       vectordb.PassageStore
	maxPassages int
	disabled    bool
}

// NewRetriever creates a retriever over the optional passage store. A nil
// store, or disabled=true, turns off the external similarity search; local
// structured data still serves every request.
func NewRetriever(store vectordb.PassageStore, maxPassages int, disabled bool) *Retriever {
	if maxPassages <= 0 {
		maxPassages = 5
	}
	return &Retriever{store: store, maxPassages: maxPassages, disabled: disabled}
}

// Retrieve returns relevant passages for the query: local structured results
// first, then external similarity results preserving their ranking. It never
// returns an error and never returns an empty slice; when nothing matches,
// generic local passages are the explicit fallback.
func (r *Retriever) Retrieve(ctx context.Context, query string, rc Context) []string {
	passages := localPassages(query, rc)

	if r.store != nil && !r.disabled {
		passages = append(passages, r.searchExternal(ctx, query)...)
	}

	if len(passages) == 0 {
		fallback := make([]string, len(genericPassages))
		copy(fallback, genericPassages)
		return fallback
	}

	if len(passages) > r.maxPassages {
		passages = passages[:r.maxPassages]
	}
	return passages
}

// searchExternal queries the vector store, swallowing every failure.
func (r *Retriever) searchExternal(ctx context.Context, query string) []string {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("knowledge: external search panicked: %v", rec)
		}
	}()

	searchCtx, cancel := context.WithTimeout(ctx, externalTimeout)
	defer cancel()

	results, err := r.store.Search(searchCtx, query, r.maxPassages, nil)
	if err != nil {
		log.Printf("knowledge: external search failed, serving local only: %v", err)
		return nil
	}

	out := make([]string, 0, len(results))
	for _, res := range results {
		out = append(out, res.Passage.Content)
	}
	return out
}
