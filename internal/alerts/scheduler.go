// Package alerts pushes proactive weather and market notifications to
// farmers on a cron schedule, reusing the topic generators so alerts get
// the same knowledge grounding as conversational replies.
package alerts

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kilimobot/kilimobot/internal/agents"
	"github.com/kilimobot/kilimobot/internal/channels"
	"github.com/kilimobot/kilimobot/internal/config"
	"github.com/kilimobot/kilimobot/internal/store"
)

// batchTimeout bounds one whole alert batch.
const batchTimeout = 10 * time.Minute

// Scheduler runs the periodic alert batches. Senders are tried in order
// per user, so listing WhatsApp before SMS gives the usual
// rich-channel-first, SMS-fallback delivery.
type Scheduler struct {
	cfg     config.AlertConfig
	store   *store.Store
	weather agents.Generator
	market  agents.Generator
	senders []channels.Sender
	cron    *cron.Cron
}

// New creates the scheduler. Nothing runs until Start.
func New(cfg config.AlertConfig, st *store.Store, weather, market agents.Generator, senders []channels.Sender) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		store:   st,
		weather: weather,
		market:  market,
		senders: senders,
		cron:    cron.New(),
	}
}

// Start registers the cron entries and launches the scheduler.
func (s *Scheduler) Start() error {
	if !s.cfg.Enabled {
		log.Printf("alerts: scheduler disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.WeatherCron, s.runWeatherBatch); err != nil {
		return fmt.Errorf("scheduling weather alerts: %w", err)
	}
	if _, err := s.cron.AddFunc(s.cfg.MarketCron, s.runMarketBatch); err != nil {
		return fmt.Errorf("scheduling market alerts: %w", err)
	}

	s.cron.Start()
	log.Printf("alerts: scheduler started (weather %q, market %q)", s.cfg.WeatherCron, s.cfg.MarketCron)
	return nil
}

// Stop halts the scheduler, waiting for a running batch to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runWeatherBatch() {
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()
	s.runBatch(ctx, "weather", s.weather, weatherQuery)
}

func (s *Scheduler) runMarketBatch() {
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()
	s.runBatch(ctx, "market", s.market, marketQuery)
}

// weatherQuery builds the per-user weather prompt, or "" when the user has
// no regional context worth alerting on.
func weatherQuery(u store.User) string {
	if u.County == "" {
		return ""
	}
	return fmt.Sprintf("Give a short weather outlook for farmers in %s county this week and what they should do about it.", u.County)
}

// marketQuery builds the per-user market prompt for their first crop.
func marketQuery(u store.User) string {
	if len(u.Crops) == 0 {
		return ""
	}
	return fmt.Sprintf("Give a short market price update for %s and selling advice.", u.Crops[0])
}

// runBatch generates and delivers one alert per eligible user. A failure
// for one user never aborts the rest of the batch.
func (s *Scheduler) runBatch(ctx context.Context, kind string, gen agents.Generator, query func(store.User) string) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		log.Printf("alerts: listing users for %s batch: %v", kind, err)
		return
	}

	sent, skipped := 0, 0
	for _, u := range users {
		q := query(u)
		if q == "" {
			skipped++
			continue
		}

		uc := channels.DeriveUserContext(q, &u)
		resp := gen.Process(ctx, q, uc, nil)
		if resp.Confidence == 0 || resp.Text == agents.Apology {
			log.Printf("alerts: no usable %s alert for %s, skipping", kind, u.Identity)
			skipped++
			continue
		}

		if s.deliver(ctx, u.Identity, resp.Text) {
			sent++
		}
	}
	log.Printf("alerts: %s batch done, %d sent, %d skipped of %d users", kind, sent, skipped, len(users))
}

// deliver tries each sender in order until one succeeds.
func (s *Scheduler) deliver(ctx context.Context, identity, text string) bool {
	for _, sender := range s.senders {
		if err := sender.SendMessage(ctx, identity, text); err != nil {
			log.Printf("alerts: %s send to %s failed: %v", sender.Channel(), identity, err)
			continue
		}
		return true
	}
	log.Printf("alerts: all channels failed for %s", identity)
	return false
}
