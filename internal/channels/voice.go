package channels

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

// VoiceHandler handles one speech turn from an IVR gateway: the gateway
// transcribes the caller, posts the transcript, and speaks the reply back.
type VoiceHandler struct {
	processor *Processor
	enabled   bool
}

// NewVoiceHandler creates the voice adapter.
func NewVoiceHandler(processor *Processor, enabled bool) *VoiceHandler {
	return &VoiceHandler{processor: processor, enabled: enabled}
}

// Channel reports the transport this adapter serves.
func (h *VoiceHandler) Channel() Channel { return ChannelVoice }

type voiceTurn struct {
	Identity   string `json:"identity"`
	Transcript string `json:"transcript"`
	Timestamp  any    `json:"timestamp"`
}

type voiceReply struct {
	Reply string `json:"reply"`
}

// HandleTurn handles one speech turn (HTTP POST). Always 200: a broken
// turn gets a spoken apology rather than an error the gateway would retry.
func (h *VoiceHandler) HandleTurn(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if !h.enabled {
		json.NewEncoder(w).Encode(voiceReply{Reply: "Voice support is not available right now. Please send a text message instead."})
		return
	}

	var turn voiceTurn
	if err := json.NewDecoder(r.Body).Decode(&turn); err != nil {
		log.Printf("voice: decoding turn: %v", err)
		json.NewEncoder(w).Encode(voiceReply{Reply: "Sorry, I did not catch that. Please try again."})
		return
	}
	defer r.Body.Close()

	reply := h.processor.ProcessInbound(r.Context(), InboundMessage{
		Channel:   ChannelVoice,
		Identity:  turn.Identity,
		Content:   turn.Transcript,
		Timestamp: turn.Timestamp,
	})
	json.NewEncoder(w).Encode(voiceReply{Reply: reply})
}

// SendMessage is unsupported: voice is strictly pull, there is no way to
// ring a farmer from here.
func (h *VoiceHandler) SendMessage(ctx context.Context, identity, text string) error {
	return fmt.Errorf("voice channel does not support push messages")
}
