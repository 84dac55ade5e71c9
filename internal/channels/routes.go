package channels

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the transport webhook endpoints on the given
// router.
func RegisterRoutes(r chi.Router, wa *WhatsAppHandler, sms *SMSHandler, ussd *USSDHandler, voice *VoiceHandler) {
	r.Get("/webhook/whatsapp", wa.HandleVerify)
	r.Post("/webhook/whatsapp", wa.HandleWebhook)
	r.Post("/webhook/sms", sms.HandleInbound)
	r.Post("/webhook/ussd", ussd.HandleSession)
	r.Post("/webhook/voice", voice.HandleTurn)
}
