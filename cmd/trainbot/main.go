package main

import (
	"context"
	"errors"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/trainquery/trainbot/internal/bot"
	"github.com/trainquery/trainbot/internal/config"
	"github.com/trainquery/trainbot/internal/rail"
	"github.com/trainquery/trainbot/pkg/http/client"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		var configErr *config.ConfigurationError
		if errors.As(err, &configErr) {
			log.Fatal().Err(err).Msg("Bot is misconfigured")
		}
		log.Fatal().Err(err).Msg("Loading configuration")
	}
	cfg.InitializeLogging()

	if cfg.Environment != "local" && cfg.Environment != "development" {
		log.Logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	providers := buildProviders(cfg)
	orc, err := rail.NewOrchestrator(providers, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Building orchestrator")
	}
	handler := bot.NewHandler(orc, cfg.DefaultLimit, log.Logger)

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Connecting to Telegram")
	}
	log.Info().
		Str("bot", api.Self.UserName).
		Int("providers", len(providers)).
		Msg("Bot started")

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30

	for update := range api.GetUpdatesChan(updateConfig) {
		if update.Message == nil || update.Message.Text == "" {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		reply := handler.Dispatch(ctx, update.Message.Text)
		cancel()

		msg := tgbotapi.NewMessage(update.Message.Chat.ID, reply)
		if _, err := api.Send(msg); err != nil {
			log.Error().Err(err).Int64("chat_id", update.Message.Chat.ID).Msg("Sending reply")
		}
	}
}

// buildProviders constructs the configured adapters in fallback order:
// RealTimeTrains first, TransportAPI second.
func buildProviders(cfg *config.Config) []rail.Provider {
	var providers []rail.Provider

	if cfg.RTT != nil {
		httpClient := client.New(client.Options{
			BaseURL:  cfg.RTT.BaseURL,
			Timeout:  cfg.HTTPTimeout,
			Username: cfg.RTT.Username,
			Password: cfg.RTT.Password,
		})
		providers = append(providers, rail.NewRTTProvider(httpClient))
	}

	if cfg.TransportAPI != nil {
		httpClient := client.New(client.Options{
			BaseURL: cfg.TransportAPI.BaseURL,
			Timeout: cfg.HTTPTimeout,
		})
		providers = append(providers, rail.NewTransportAPIProvider(httpClient, cfg.TransportAPI.AppID, cfg.TransportAPI.AppKey))
	}

	return providers
}
