package channels

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/kilimobot/kilimobot/internal/agents"
	"github.com/kilimobot/kilimobot/internal/config"
	"github.com/kilimobot/kilimobot/internal/geo"
	"github.com/kilimobot/kilimobot/internal/llm"
	"github.com/kilimobot/kilimobot/internal/store"
)

// QueryProcessor is the orchestration entry point the processor delegates
// to. It never fails; worst case it answers with an apology.
type QueryProcessor interface {
	ProcessQuery(ctx context.Context, text string, uc agents.UserContext, history []llm.Message, lang config.Language) string
}

// Processor turns a canonical inbound message into a reply: it resolves the
// user, persists both turns, derives context and history, and delegates to
// the orchestrator. All adapters share one Processor.
type Processor struct {
	store        *store.Store
	orchestrator QueryProcessor
	historyLimit int
	defaultLang  config.Language
}

// NewProcessor creates a Processor over the given store and orchestrator.
func NewProcessor(st *store.Store, orch QueryProcessor, historyLimit int, defaultLang config.Language) *Processor {
	if historyLimit <= 0 {
		historyLimit = 6
	}
	if defaultLang == "" {
		defaultLang = config.LanguageEnglish
	}
	return &Processor{
		store:        st,
		orchestrator: orch,
		historyLimit: historyLimit,
		defaultLang:  defaultLang,
	}
}

// ProcessInbound handles one canonical message end to end and returns the
// reply text for the adapter to render. Persistence is best-effort: a
// store failure degrades to an anonymous, history-free exchange rather
// than failing the request.
func (p *Processor) ProcessInbound(ctx context.Context, msg InboundMessage) string {
	user, err := p.store.GetOrCreateUser(ctx, msg.Identity)
	if err != nil {
		log.Printf("channels: user lookup for %s failed, using anonymous context: %v", msg.Identity, err)
		user = nil
	}

	inboundID := uuid.New().String()
	if user != nil {
		err := p.store.AppendMessage(ctx, store.Message{
			ID:        inboundID,
			Identity:  msg.Identity,
			Channel:   string(msg.Channel),
			Direction: store.DirectionInbound,
			Content:   msg.Content,
			Timestamp: store.ParseTimestampOr(msg.Timestamp, time.Now()),
			Metadata:  msg.Metadata,
		})
		if err != nil {
			log.Printf("channels: appending inbound message failed: %v", err)
		}
		p.updateProfile(ctx, msg)
	}

	uc := DeriveUserContext(msg.Content, user)
	if uc.Identity == "" {
		uc.Identity = msg.Identity
	}
	if msg.Latitude != nil && msg.Longitude != nil {
		uc.Latitude, uc.Longitude = *msg.Latitude, *msg.Longitude
		uc.HasCoords = true
		if county := geo.NearestCounty(uc.Latitude, uc.Longitude); county != "" {
			uc.Region = county
		}
	}

	lang := p.defaultLang
	if user != nil && user.Language != "" {
		lang = user.Language
	}
	if msg.Language != "" {
		lang = msg.Language
	}

	history := p.history(ctx, msg.Identity, inboundID)
	reply := p.orchestrator.ProcessQuery(ctx, msg.Content, uc, history, lang)

	if user != nil {
		err := p.store.AppendMessage(ctx, store.Message{
			Identity:  msg.Identity,
			Channel:   string(msg.Channel),
			Direction: store.DirectionOutbound,
			Content:   reply,
		})
		if err != nil {
			log.Printf("channels: appending outbound message failed: %v", err)
		}
	}

	return reply
}

// history fetches the last turns before the current message, oldest first,
// as role-tagged prompt messages. The just-appended inbound message is
// excluded by ID so the request never sees itself as history.
func (p *Processor) history(ctx context.Context, identity, excludeID string) []llm.Message {
	msgs, err := p.store.LastMessages(ctx, identity, p.historyLimit+1)
	if err != nil {
		log.Printf("channels: fetching history for %s failed: %v", identity, err)
		return nil
	}

	var out []llm.Message
	for _, m := range msgs {
		if m.ID == excludeID {
			continue
		}
		role := llm.RoleUser
		if m.Direction == store.DirectionOutbound {
			role = llm.RoleAssistant
		}
		out = append(out, llm.Message{Role: role, Content: m.Content})
	}
	if len(out) > p.historyLimit {
		out = out[len(out)-p.historyLimit:]
	}
	return out
}

// updateProfile merges any crop, county, farm-stage or livestock mentions
// into the stored profile, plus coordinates when the transport delivered
// them. Failures are logged, never surfaced.
func (p *Processor) updateProfile(ctx context.Context, msg InboundMessage) {
	if up := ExtractProfileSignals(msg.Content); !signalsEmpty(up) {
		if msg.Name != "" {
			up.Name = msg.Name
		}
		if _, err := p.store.UpdateProfile(ctx, msg.Identity, up); err != nil {
			log.Printf("channels: profile update for %s failed: %v", msg.Identity, err)
		}
	}

	if msg.Latitude != nil && msg.Longitude != nil {
		county := geo.NearestCounty(*msg.Latitude, *msg.Longitude)
		if err := p.store.UpdateLocation(ctx, msg.Identity, *msg.Latitude, *msg.Longitude, county); err != nil {
			log.Printf("channels: location update for %s failed: %v", msg.Identity, err)
		}
	}
}
