package alerts

import (
	"context"
	"errors"
	"testing"

	"github.com/kilimobot/kilimobot/internal/agents"
	"github.com/kilimobot/kilimobot/internal/channels"
	"github.com/kilimobot/kilimobot/internal/config"
	"github.com/kilimobot/kilimobot/internal/llm"
	"github.com/kilimobot/kilimobot/internal/store"
)

type stubAlertGenerator struct {
	name       string
	text       string
	confidence float64
}

func (g stubAlertGenerator) Name() string { return g.name }

func (g stubAlertGenerator) Process(ctx context.Context, query string, uc agents.UserContext, history []llm.Message) agents.Response {
	return agents.Response{Generator: g.name, Text: g.text, Confidence: g.confidence}
}

// stubSender records sends and can fail for selected identities.
type stubSender struct {
	channel channels.Channel
	failFor map[string]bool
	sent    []string
}

func (s *stubSender) Channel() channels.Channel { return s.channel }

func (s *stubSender) SendMessage(ctx context.Context, identity, text string) error {
	if s.failFor[identity] {
		return errors.New("delivery failed")
	}
	s.sent = append(s.sent, identity)
	return nil
}

func setupScheduler(t *testing.T, primary, fallback *stubSender) (*Scheduler, *store.Store) {
	t.Helper()
	st, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	gen := stubAlertGenerator{name: agents.TopicClimate, text: "rain expected, plant now", confidence: 0.8}
	sched := New(config.AlertConfig{Enabled: true, WeatherCron: "0 6 * * *", MarketCron: "0 7 * * 1"},
		st, gen, gen, []channels.Sender{primary, fallback})
	return sched, st
}

func seedUser(t *testing.T, st *store.Store, identity, county string, crops []string) {
	t.Helper()
	ctx := context.Background()
	if _, err := st.GetOrCreateUser(ctx, identity); err != nil {
		t.Fatalf("GetOrCreateUser(%s) error: %v", identity, err)
	}
	if _, err := st.UpdateProfile(ctx, identity, store.ProfileUpdate{County: county, Crops: crops}); err != nil {
		t.Fatalf("UpdateProfile(%s) error: %v", identity, err)
	}
}

func TestWeatherBatchDelivers(t *testing.T) {
	wa := &stubSender{channel: channels.ChannelWhatsApp}
	sms := &stubSender{channel: channels.ChannelSMS}
	sched, st := setupScheduler(t, wa, sms)

	seedUser(t, st, "+254700000030", "nakuru", nil)
	seedUser(t, st, "+254700000031", "meru", nil)

	sched.runWeatherBatch()

	if len(wa.sent) != 2 {
		t.Errorf("whatsapp sends = %v, want both users", wa.sent)
	}
	if len(sms.sent) != 0 {
		t.Errorf("sms sends = %v, want none when whatsapp works", sms.sent)
	}
}

func TestWeatherBatchSkipsUsersWithoutCounty(t *testing.T) {
	wa := &stubSender{channel: channels.ChannelWhatsApp}
	sms := &stubSender{channel: channels.ChannelSMS}
	sched, st := setupScheduler(t, wa, sms)

	seedUser(t, st, "+254700000032", "", nil)

	sched.runWeatherBatch()
	if len(wa.sent) != 0 {
		t.Errorf("sends = %v, want none", wa.sent)
	}
}

func TestDeliveryFallsBackToSMS(t *testing.T) {
	wa := &stubSender{channel: channels.ChannelWhatsApp, failFor: map[string]bool{"+254700000033": true}}
	sms := &stubSender{channel: channels.ChannelSMS}
	sched, st := setupScheduler(t, wa, sms)

	seedUser(t, st, "+254700000033", "nakuru", nil)

	sched.runWeatherBatch()
	if len(sms.sent) != 1 || sms.sent[0] != "+254700000033" {
		t.Errorf("sms sends = %v, want fallback delivery", sms.sent)
	}
}

func TestOneUserFailureDoesNotAbortBatch(t *testing.T) {
	wa := &stubSender{channel: channels.ChannelWhatsApp, failFor: map[string]bool{"+254700000034": true}}
	sms := &stubSender{channel: channels.ChannelSMS, failFor: map[string]bool{"+254700000034": true}}
	sched, st := setupScheduler(t, wa, sms)

	seedUser(t, st, "+254700000034", "nakuru", nil)
	seedUser(t, st, "+254700000035", "meru", nil)

	sched.runWeatherBatch()
	if len(wa.sent) != 1 || wa.sent[0] != "+254700000035" {
		t.Errorf("whatsapp sends = %v, want the healthy user delivered", wa.sent)
	}
}

func TestMarketBatchUsesCrops(t *testing.T) {
	wa := &stubSender{channel: channels.ChannelWhatsApp}
	sms := &stubSender{channel: channels.ChannelSMS}
	sched, st := setupScheduler(t, wa, sms)

	seedUser(t, st, "+254700000036", "nakuru", []string{"maize"})
	seedUser(t, st, "+254700000037", "meru", nil) // no crops, no market alert

	sched.runMarketBatch()
	if len(wa.sent) != 1 || wa.sent[0] != "+254700000036" {
		t.Errorf("sends = %v, want only the crop-holding user", wa.sent)
	}
}

func TestApologyAlertsNotSent(t *testing.T) {
	wa := &stubSender{channel: channels.ChannelWhatsApp}
	st, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	broken := stubAlertGenerator{name: agents.TopicClimate, text: agents.Apology, confidence: 0}
	sched := New(config.AlertConfig{Enabled: true, WeatherCron: "@daily", MarketCron: "@daily"},
		st, broken, broken, []channels.Sender{wa})

	seedUser(t, st, "+254700000038", "nakuru", nil)

	sched.runWeatherBatch()
	if len(wa.sent) != 0 {
		t.Errorf("sends = %v, want apologies suppressed", wa.sent)
	}
}

func TestStartRejectsBadCronSpec(t *testing.T) {
	wa := &stubSender{channel: channels.ChannelWhatsApp}
	st, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	gen := stubAlertGenerator{name: agents.TopicClimate, text: "x", confidence: 0.5}
	sched := New(config.AlertConfig{Enabled: true, WeatherCron: "not a cron spec", MarketCron: "@daily"},
		st, gen, gen, []channels.Sender{wa})

	if err := sched.Start(); err == nil {
		t.Error("Start() should reject an invalid cron spec")
	}
}

func TestDisabledSchedulerStarts(t *testing.T) {
	wa := &stubSender{channel: channels.ChannelWhatsApp}
	st, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	gen := stubAlertGenerator{name: agents.TopicClimate, text: "x", confidence: 0.5}
	sched := New(config.AlertConfig{Enabled: false}, st, gen, gen, []channels.Sender{wa})

	if err := sched.Start(); err != nil {
		t.Errorf("disabled Start() error: %v", err)
	}
}
