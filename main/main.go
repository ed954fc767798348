package main

import (
	"context"
	"flag"

	"grievbot/bot"
	"grievbot/bot/config"
	"grievbot/bot/db"
	"grievbot/bot/genai"
	"grievbot/bot/issue"
	"grievbot/bot/notify"
	"grievbot/bot/priority"
	"grievbot/bot/ratelimit"
	"grievbot/bot/submission"
	"grievbot/bot/telegram"
	"grievbot/common"
	"grievbot/dashboard/server"

	"github.com/apex/log"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, relying on the environment")
	}
	cfg := config.Load()

	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY not set, classification and replies will fall back")
	}

	catalog, err := issue.Load(cfg.IssueConfigPath)
	if err != nil {
		log.Fatalf("Failed to load issue catalog: %v", err)
	}

	dbc, err := common.DBConnect()
	if err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}
	defer dbc.Close()

	if err := db.InitSchema(dbc); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	var publisher *notify.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = notify.NewPublisher(cfg.AMQPURL, cfg.NotifyExchange, cfg.NotifyRoutingKey)
		if err != nil {
			log.Warnf("Department notifications disabled: %v", err)
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	var limiter *ratelimit.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		limiter = ratelimit.NewLimiter(rdb, "grievance_limit", cfg.DailyLimit)
	}

	assistant := genai.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	scorer := priority.NewScorer(assistant, priority.Tables{
		KeywordWeights:   catalog.KeywordWeights,
		FrequencyWeights: catalog.FrequencyWeights,
		DefaultFrequency: catalog.DefaultFrequency,
	})

	tg := telegram.NewClient(cfg.TelegramToken)
	handler := bot.NewHandler(catalog, submission.NewMemoryStore(), scorer,
		assistant, tg, dbc, limiter)

	go server.StartService(catalog, publisher)

	b := bot.New(tg, handler, cfg.PollTimeout)
	if err := b.Run(context.Background()); err != nil {
		log.Errorf("Bot stopped: %v", err)
	}
}
