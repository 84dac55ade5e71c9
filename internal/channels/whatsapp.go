package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/kilimobot/kilimobot/internal/config"
)

const whatsappGraphURL = "https://graph.facebook.com/v19.0"

// WhatsAppHandler handles Meta Cloud API webhooks and outbound sends.
type WhatsAppHandler struct {
	processor *Processor
	token     string
	phoneID   string
	client    *http.Client
	baseURL   string
}

// NewWhatsAppHandler creates the WhatsApp adapter. Missing credentials are
// allowed: the webhook still accepts traffic and sends fail gracefully.
func NewWhatsAppHandler(processor *Processor, cfg config.ChannelConfig) *WhatsAppHandler {
	return &WhatsAppHandler{
		processor: processor,
		token:     cfg.WhatsAppToken,
		phoneID:   cfg.WhatsAppPhoneID,
		client:    &http.Client{Timeout: 30 * time.Second},
		baseURL:   whatsappGraphURL,
	}
}

// Channel reports the transport this adapter serves.
func (h *WhatsAppHandler) Channel() Channel { return ChannelWhatsApp }

// waPayload is the Cloud API webhook envelope, reduced to the fields used.
type waPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Contacts []struct {
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
				} `json:"contacts"`
				Messages []waMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type waMessage struct {
	From      string `json:"from"`
	Timestamp string `json:"timestamp"` // epoch seconds as a string
	Type      string `json:"type"`
	Text      struct {
		Body string `json:"body"`
	} `json:"text"`
	Location *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
}

// HandleVerify answers the Cloud API subscription handshake (HTTP GET).
func (h *WhatsAppHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") == "subscribe" && q.Get("hub.verify_token") == h.token {
		io.WriteString(w, q.Get("hub.challenge"))
		return
	}
	http.Error(w, "verification failed", http.StatusForbidden)
}

// HandleWebhook handles inbound message notifications (HTTP POST). It
// always acknowledges with 200 so the provider does not retry; failures
// are logged internally.
func (h *WhatsAppHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	defer w.WriteHeader(http.StatusOK)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("whatsapp: reading webhook body: %v", err)
		return
	}
	defer r.Body.Close()

	var payload waPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("whatsapp: decoding webhook payload: %v", err)
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			name := ""
			if len(change.Value.Contacts) > 0 {
				name = change.Value.Contacts[0].Profile.Name
			}
			for _, wm := range change.Value.Messages {
				h.handleMessage(r.Context(), wm, name)
			}
		}
	}
}

func (h *WhatsAppHandler) handleMessage(ctx context.Context, wm waMessage, name string) {
	msg := InboundMessage{
		Channel:   ChannelWhatsApp,
		Identity:  wm.From,
		Name:      name,
		Timestamp: wm.Timestamp,
		Metadata:  map[string]string{"wa_type": wm.Type},
	}

	switch wm.Type {
	case "text":
		msg.Content = wm.Text.Body
	case "location":
		if wm.Location == nil {
			return
		}
		msg.Content = "shared location"
		msg.Latitude = &wm.Location.Latitude
		msg.Longitude = &wm.Location.Longitude
	default:
		return
	}

	reply := h.processor.ProcessInbound(ctx, msg)
	if err := h.SendMessage(ctx, wm.From, reply); err != nil {
		log.Printf("whatsapp: replying to %s: %v", wm.From, err)
	}
}

// SendMessage pushes a text message through the Cloud API.
func (h *WhatsAppHandler) SendMessage(ctx context.Context, identity, text string) error {
	if h.token == "" || h.phoneID == "" {
		return fmt.Errorf("whatsapp channel not configured")
	}

	payload, err := json.Marshal(map[string]any{
		"messaging_product": "whatsapp",
		"to":                identity,
		"type":              "text",
		"text":              map[string]string{"body": text},
	})
	if err != nil {
		return fmt.Errorf("encoding whatsapp message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", h.baseURL, h.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building whatsapp request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+h.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending whatsapp message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp API status %d: %s", resp.StatusCode, body)
	}
	return nil
}
