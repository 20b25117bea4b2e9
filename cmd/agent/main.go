package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-notify-agent/internal/application/escalation"
	"github.com/go-notify-agent/internal/application/feed"
	"github.com/go-notify-agent/internal/application/interaction"
	"github.com/go-notify-agent/internal/application/navigation"
	"github.com/go-notify-agent/internal/application/orchestrator"
	"github.com/go-notify-agent/internal/config"
	"github.com/go-notify-agent/internal/domain"
	"github.com/go-notify-agent/internal/infrastructure/audio"
	"github.com/go-notify-agent/internal/infrastructure/backend"
	"github.com/go-notify-agent/internal/infrastructure/desktop"
	jwtinfra "github.com/go-notify-agent/internal/infrastructure/jwt"
	"github.com/go-notify-agent/internal/infrastructure/smtp"
	snsinfra "github.com/go-notify-agent/internal/infrastructure/sns"
	transporthttp "github.com/go-notify-agent/internal/transport/http"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, reading from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := newLogger(cfg)

	// JWT provider for the local API (optional — graceful fallback if the
	// storefront public key is missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg.JWTPublicKeyPath); err == nil {
		jwtProvider = p
	} else {
		log.Warn().Err(err).Msg("JWT provider not available; channel routes will reject requests, only health and permission endpoints are reachable")
	}

	backendClient := backend.NewClient(cfg.BackendBaseURL, cfg.RequestTimeout, func(audience domain.Audience) string {
		if audience == domain.AudienceAdmin {
			return cfg.AdminToken
		}
		return cfg.ClientToken
	})

	audioEngine := audio.NewEngine(log)
	notifier := desktop.NewNotifier("Storefront Notifications")
	gate := desktop.NewGate(cfg.PermissionStatePath, notifier, log)

	feedSvc := feed.NewService(backendClient)
	resolver := navigation.NewResolver(log)

	orch := orchestrator.NewService(orchestrator.Deps{
		Store:           feedSvc,
		Audio:           audioEngine,
		Gate:            gate,
		Desktop:         notifier,
		Escalator:       newEscalator(cfg, log),
		EscalationDelay: cfg.Escalation.Delay,
		FetchLimit:      cfg.FetchLimit,
		Logger:          log,
	})

	itx := interaction.NewService(feedSvc, orch, audioEngine, resolver, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, name := range cfg.Channels {
		audience, err := domain.ParseAudience(name)
		if err != nil {
			log.Fatal().Str("channel", name).Msg("unknown channel in config")
		}
		if err := orch.StartChannel(ctx, audience, cfg.PollInterval(name)); err != nil {
			log.Fatal().Err(err).Msg("start channel")
		}
		log.Info().Str("audience", name).Dur("interval", cfg.PollInterval(name)).Msg("channel mounted")
	}

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		Feed:         feedSvc,
		Orchestrator: orch,
		Interactions: itx,
		Gate:         gate,
		Journal:      orch,
		JWTProvider:  jwtProvider,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.AppPort).Str("env", cfg.AppEnv).Msg("local API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	cancel()
	orch.Stop()
	audioEngine.StopLoopingAlert()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("stopped")
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.AppEnv == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// newEscalator wires the optional out-of-band escalation channels. Returns
// nil when escalation is disabled, which the orchestrator treats as absent.
func newEscalator(cfg *config.Config, log zerolog.Logger) orchestrator.Escalator {
	if cfg.Escalation.Delay <= 0 {
		return nil
	}

	deps := escalation.Deps{Logger: log}
	if cfg.Escalation.SMSNumber != "" {
		if sender, err := snsinfra.NewSender(cfg.Escalation); err == nil {
			deps.SMS = sender
			deps.SMSNumber = cfg.Escalation.SMSNumber
		} else {
			log.Warn().Err(err).Msg("SNS sender not available")
		}
	}
	if cfg.Escalation.EmailTo != "" {
		deps.Mailer = smtp.NewMailer(cfg.Escalation)
		deps.EmailTo = cfg.Escalation.EmailTo
	}
	if deps.SMS == nil && deps.Mailer == nil {
		return nil
	}
	return escalation.NewService(deps)
}
