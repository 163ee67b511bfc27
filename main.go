package main

import (
	"context"
	"log"

	"gorm.io/gorm"

	"github.com/anasco119/QueriesShot/bot"
	"github.com/anasco119/QueriesShot/config"
	"github.com/anasco119/QueriesShot/database"
	"github.com/anasco119/QueriesShot/models"
	"github.com/anasco119/QueriesShot/repository"
	"github.com/anasco119/QueriesShot/services"
	"github.com/anasco119/QueriesShot/telegram"
)

func main() {
	// Load application configuration
	config.LoadConfig()
	cfg := &config.AppConfig

	// Initialize database connection
	db, err := database.Init(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to initialize database: %v", err)
	}
	runMigrations(db)

	// Initialize repositories
	faqRepo := repository.NewFAQRepository(db)
	channelRepo := repository.NewChannelRepository(db)
	log.Println("INFO: [Main] Repositories initialized.")

	// Initialize services
	worktime, err := services.NewWorkTimeService(cfg.WorkingHours)
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to initialize working-hours gate: %v", err)
	}
	oracle, err := services.NewOracle(cfg.Oracle)
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to initialize oracle: %v", err)
	}
	client := telegram.NewClient(nil, cfg.Bot.Token)

	quota := services.NewQuotaTracker(cfg.Quota.DailyLimit, worktime)
	knowledge := services.NewKnowledgeService(faqRepo, channelRepo, cfg.Knowledge.ChannelExcerptLimit)
	classifier := services.NewClassifierService(oracle)
	router := services.NewRouterService(oracle)
	moderation := services.NewModerationService(cfg.Moderation, client)
	log.Println("INFO: [Main] Services initialized.")

	// Initialize the message pipeline and gateway
	handler := bot.NewHandler(
		cfg.Bot.AdminUserID,
		cfg.Bot.AllowedGroupID,
		worktime,
		quota,
		knowledge,
		classifier,
		router,
		moderation,
		client,
		faqRepo,
		channelRepo,
	)
	gateway := telegram.NewGateway(client, handler)
	log.Println("INFO: [Main] Pipeline handler initialized.")

	ctx := context.Background()
	switch cfg.Bot.Mode {
	case "webhook":
		addr := ":" + cfg.Server.Port
		if err := gateway.RunWebhook(ctx, addr, cfg.Bot.WebhookURL, cfg.Bot.Token); err != nil {
			log.Fatalf("FATAL: [Main] Webhook server failed: %v", err)
		}
	default:
		if err := gateway.RunPolling(ctx); err != nil {
			log.Fatalf("FATAL: [Main] Polling loop stopped: %v", err)
		}
	}
}

func runMigrations(db *gorm.DB) {
	log.Println("INFO: [Main] Running database migrations...")
	err := db.AutoMigrate(
		&models.FAQEntry{},
		&models.ChannelPost{},
	)
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to auto-migrate database: %v", err)
	}
	log.Println("INFO: [Main] Database migration completed.")
}
