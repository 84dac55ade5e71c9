package channels

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kilimobot/kilimobot/internal/analysis"
	"github.com/kilimobot/kilimobot/internal/config"
)

const smsAPIURL = "https://api.africastalking.com/version1/messaging"

// maxSMSLength keeps replies within two concatenated SMS segments.
const maxSMSLength = 306

// SMSHandler handles Africa's Talking inbound SMS callbacks and outbound
// sends.
type SMSHandler struct {
	processor *Processor
	apiKey    string
	senderID  string
	client    *http.Client
	baseURL   string
}

// NewSMSHandler creates the SMS adapter.
func NewSMSHandler(processor *Processor, cfg config.ChannelConfig) *SMSHandler {
	return &SMSHandler{
		processor: processor,
		apiKey:    cfg.SMSAPIKey,
		senderID:  cfg.SMSSenderID,
		client:    &http.Client{Timeout: 30 * time.Second},
		baseURL:   smsAPIURL,
	}
}

// Channel reports the transport this adapter serves.
func (h *SMSHandler) Channel() Channel { return ChannelSMS }

// HandleInbound handles the provider's inbound-SMS callback (HTTP POST,
// form-encoded). It always acknowledges with 200; the reply goes out as a
// separate send.
func (h *SMSHandler) HandleInbound(w http.ResponseWriter, r *http.Request) {
	defer w.WriteHeader(http.StatusOK)

	if err := r.ParseForm(); err != nil {
		log.Printf("sms: parsing inbound callback: %v", err)
		return
	}

	from := r.PostFormValue("from")
	text := r.PostFormValue("text")
	if from == "" || strings.TrimSpace(text) == "" {
		return
	}

	reply := h.processor.ProcessInbound(r.Context(), InboundMessage{
		Channel:   ChannelSMS,
		Identity:  from,
		Content:   text,
		Timestamp: r.PostFormValue("date"),
		Metadata:  map[string]string{"link_id": r.PostFormValue("linkId")},
	})

	if err := h.SendMessage(r.Context(), from, reply); err != nil {
		log.Printf("sms: replying to %s: %v", from, err)
	}
}

// SendMessage pushes a text message, truncated to the SMS budget.
func (h *SMSHandler) SendMessage(ctx context.Context, identity, text string) error {
	if h.apiKey == "" {
		return fmt.Errorf("sms channel not configured")
	}

	if len(text) > maxSMSLength {
		text = analysis.TruncateBytes(text, maxSMSLength-3) + "..."
	}

	form := url.Values{}
	form.Set("to", identity)
	form.Set("message", text)
	if h.senderID != "" {
		form.Set("from", h.senderID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building sms request: %w", err)
	}
	req.Header.Set("apiKey", h.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms API status %d: %s", resp.StatusCode, body)
	}
	return nil
}
