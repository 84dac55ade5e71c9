package channels

import (
	"context"

	"github.com/kilimobot/kilimobot/internal/config"
)

// Channel identifies the transport a message arrived on.
type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelSMS      Channel = "sms"
	ChannelUSSD     Channel = "ussd"
	ChannelVoice    Channel = "voice"
	ChannelWeb      Channel = "web"
)

// InboundMessage is the canonical transport-independent message each
// adapter produces before handing off to the shared processor. Timestamp is
// whatever shape the transport delivered; the store normalizes it.
type InboundMessage struct {
	Channel   Channel
	Identity  string
	Name      string
	Content   string
	Timestamp any
	Language  config.Language // optional per-request override
	Latitude  *float64
	Longitude *float64
	Metadata  map[string]string
}

// Sender is the best-effort push primitive the alert scheduler uses.
// Implementations without credentials return an error rather than
// preventing startup.
type Sender interface {
	Channel() Channel
	SendMessage(ctx context.Context, identity, text string) error
}
