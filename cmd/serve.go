package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/kilimobot/kilimobot/internal/agents"
	"github.com/kilimobot/kilimobot/internal/alerts"
	"github.com/kilimobot/kilimobot/internal/cache"
	"github.com/kilimobot/kilimobot/internal/channels"
	"github.com/kilimobot/kilimobot/internal/llm"
	"github.com/kilimobot/kilimobot/internal/orchestrator"
	"github.com/kilimobot/kilimobot/internal/server"
	"github.com/kilimobot/kilimobot/internal/store"
)

// llmRequestsPerMinute throttles outbound generation calls process-wide.
const llmRequestsPerMinute = 60

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the advisory service",
	Long:  `Starts the HTTP server with the chat API, channel webhooks and the proactive alert scheduler.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Generation backends, primary first with explicit fallback.
		client, err := llm.NewFromConfig(cfg.LLM)
		if err != nil {
			return fmt.Errorf("creating LLM backends: %w", err)
		}
		client = llm.NewRateLimitedClient(client, llmRequestsPerMinute)

		respCache := createCache(cfg)
		cache.StartSweeper(ctx, respCache, 30*time.Minute)

		retriever := createRetriever(ctx, cfg)

		// One generator per topic, all sharing the cache and retriever.
		var generators []agents.Generator
		for _, strategy := range agents.AllStrategies(agents.Services{}) {
			generators = append(generators, agents.New(strategy, client, retriever, respCache, cfg.LLM.Temperature))
		}

		translator := agents.NewTranslator(client)
		orch := orchestrator.New(client, translator, generators)

		st, err := store.Open(filepath.Join(cfg.DataDir, "kilimobot.db"))
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer st.Close()

		processor := channels.NewProcessor(st, orch, cfg.HistoryLimit, cfg.DefaultLanguage)

		wa := channels.NewWhatsAppHandler(processor, cfg.Channels)
		sms := channels.NewSMSHandler(processor, cfg.Channels)
		ussd := channels.NewUSSDHandler(processor)
		voice := channels.NewVoiceHandler(processor, cfg.Channels.VoiceEnabled)

		srv := server.New(*cfg, st, processor)
		srv.MountWebhooks(func(r chi.Router) {
			channels.RegisterRoutes(r, wa, sms, ussd, voice)
		})

		sched := alerts.New(cfg.Alerts, st,
			findGenerator(generators, agents.TopicClimate),
			findGenerator(generators, agents.TopicMarket),
			[]channels.Sender{wa, sms})
		if err := sched.Start(); err != nil {
			return fmt.Errorf("starting alert scheduler: %w", err)
		}
		defer sched.Stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("running server: %w", err)
		}
		return nil
	},
}

// findGenerator picks the generator for a topic name out of the shared set.
func findGenerator(generators []agents.Generator, name string) agents.Generator {
	for _, g := range generators {
		if g.Name() == name {
			return g
		}
	}
	return generators[0]
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
