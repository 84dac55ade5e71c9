package channels

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kilimobot/kilimobot/internal/analysis"
)

// maxUSSDLength is the response budget most USSD gateways enforce.
const maxUSSDLength = 160

// ussdSessionTTL bounds how long an idle menu session is remembered.
const ussdSessionTTL = 5 * time.Minute

const ussdMenu = "Welcome to Kilimobot\n" +
	"1. Ask a farming question\n" +
	"2. Weather outlook\n" +
	"3. Market prices\n" +
	"4. My farm profile"

// USSDHandler drives the menu-based USSD flow. USSD is synchronous: every
// keypress arrives as a new request carrying the session id and the full
// "*"-joined input so far; the response text is the screen, prefixed CON
// (more input expected) or END (session over).
type USSDHandler struct {
	processor *Processor

	mu       sync.Mutex
	sessions map[string]time.Time
}

// NewUSSDHandler creates the USSD adapter.
func NewUSSDHandler(processor *Processor) *USSDHandler {
	return &USSDHandler{
		processor: processor,
		sessions:  make(map[string]time.Time),
	}
}

// Channel reports the transport this adapter serves.
func (h *USSDHandler) Channel() Channel { return ChannelUSSD }

// HandleSession handles one USSD gateway callback (HTTP POST,
// form-encoded). The gateway expects 200 with the screen text regardless
// of internal state.
func (h *USSDHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		log.Printf("ussd: parsing session callback: %v", err)
		io.WriteString(w, "END Service unavailable. Please try again later.")
		return
	}

	sessionID := r.PostFormValue("sessionId")
	phone := r.PostFormValue("phoneNumber")
	input := r.PostFormValue("text")

	h.touchSession(sessionID)
	screen := h.respond(r, phone, input)
	io.WriteString(w, truncateScreen(screen))
}

func (h *USSDHandler) respond(r *http.Request, phone, input string) string {
	steps := strings.Split(input, "*")
	if input == "" {
		return "CON " + ussdMenu
	}

	ask := func(question string) string {
		reply := h.processor.ProcessInbound(r.Context(), InboundMessage{
			Channel:  ChannelUSSD,
			Identity: phone,
			Content:  question,
			Metadata: map[string]string{"session_id": r.PostFormValue("sessionId")},
		})
		return "END " + reply
	}

	switch steps[0] {
	case "1":
		if len(steps) == 1 {
			return "CON Type your farming question"
		}
		return ask(strings.Join(steps[1:], " "))
	case "2":
		return ask("What is the weather outlook for my farm this week?")
	case "3":
		if len(steps) == 1 {
			return "CON Which crop's market price?"
		}
		return ask(fmt.Sprintf("What is the current market price for %s?", steps[1]))
	case "4":
		return "END " + h.profileSummary(r, phone)
	default:
		return "CON Invalid choice.\n" + ussdMenu
	}
}

func (h *USSDHandler) profileSummary(r *http.Request, phone string) string {
	u, err := h.processor.store.GetUser(r.Context(), phone)
	if err != nil {
		return "No profile yet. Ask a question to get started."
	}

	var parts []string
	if u.County != "" {
		parts = append(parts, "County: "+u.County)
	}
	if len(u.Crops) > 0 {
		parts = append(parts, "Crops: "+strings.Join(u.Crops, ", "))
	}
	if len(u.Livestock) > 0 {
		parts = append(parts, "Livestock: "+strings.Join(u.Livestock, ", "))
	}
	if len(parts) == 0 {
		return "No profile yet. Ask a question to get started."
	}
	return strings.Join(parts, "\n")
}

func (h *USSDHandler) touchSession(sessionID string) {
	if sessionID == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	for id, seen := range h.sessions {
		if now.Sub(seen) > ussdSessionTTL {
			delete(h.sessions, id)
		}
	}
	h.sessions[sessionID] = now
}

func truncateScreen(s string) string {
	if len(s) <= maxUSSDLength {
		return s
	}
	return analysis.TruncateBytes(s, maxUSSDLength-3) + "..."
}
