package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// WorkingHours defines the daily window during which the bot answers
// ordinary users. Start and End are hours of day in the bot timezone,
// interpreted as the half-open interval [Start, End).
type WorkingHours struct {
	Start    int    `mapstructure:"start"`
	End      int    `mapstructure:"end"`
	Timezone string `mapstructure:"timezone"`
}

// OracleConfig selects and configures the text-completion backend.
type OracleConfig struct {
	Provider string `mapstructure:"provider"` // "gemini" or "openai"
	Gemini   struct {
		APIKey string `mapstructure:"api_key"`
		Model  string `mapstructure:"model"`
	} `mapstructure:"gemini"`
	OpenAI struct {
		APIKey  string `mapstructure:"api_key"`
		BaseURL string `mapstructure:"base_url"`
		Model   string `mapstructure:"model"`
	} `mapstructure:"openai"`
}

// ModerationConfig holds the escalation tuning knobs.
type ModerationConfig struct {
	ViolationThreshold int           `mapstructure:"violation_threshold"`
	MuteDuration       time.Duration `mapstructure:"mute_duration"`
	NoticeTTL          time.Duration `mapstructure:"notice_ttl"` // how long warning/mute notices stay up before self-deleting
}

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	Database struct {
		DSN string `mapstructure:"dsn"` // "memory" or a SQLite file path
	} `mapstructure:"database"`
	Bot struct {
		Token          string `mapstructure:"token"`
		AllowedGroupID int64  `mapstructure:"allowed_group_id"`
		AdminUserID    int64  `mapstructure:"admin_user_id"`
		WebhookURL     string `mapstructure:"webhook_url"`
		Mode           string `mapstructure:"mode"` // "webhook" or "polling"
	} `mapstructure:"bot"`
	WorkingHours WorkingHours `mapstructure:"working_hours"`
	Quota        struct {
		DailyLimit int `mapstructure:"daily_limit"`
	} `mapstructure:"quota"`
	Knowledge struct {
		ChannelExcerptLimit int `mapstructure:"channel_excerpt_limit"`
	} `mapstructure:"knowledge"`
	Oracle     OracleConfig     `mapstructure:"oracle"`
	Moderation ModerationConfig `mapstructure:"moderation"`
}

// AppConfig is the global configuration instance.
var AppConfig Config

// LoadConfig loads configuration from config.yaml and environment variables.
// Environment variables take precedence over file values for secrets and
// deployment identities (token, API keys, chat ids, webhook URL, port).
func LoadConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../config") // for running from package test directories

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("database.dsn", "faq.db")
	viper.SetDefault("bot.mode", "polling")
	viper.SetDefault("working_hours.start", 8)
	viper.SetDefault("working_hours.end", 19)
	viper.SetDefault("working_hours.timezone", "Africa/Khartoum")
	viper.SetDefault("quota.daily_limit", 10)
	viper.SetDefault("knowledge.channel_excerpt_limit", 5)
	viper.SetDefault("oracle.provider", "gemini")
	viper.SetDefault("oracle.gemini.model", "gemini-2.0-flash")
	viper.SetDefault("oracle.openai.model", "gpt-4o-mini")
	viper.SetDefault("moderation.violation_threshold", 3)
	viper.SetDefault("moderation.mute_duration", 10*time.Minute)
	viper.SetDefault("moderation.notice_ttl", 45*time.Second)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("WARN: [Config] config.yaml not found. Using environment variables and defaults.")
		} else {
			log.Fatalf("FATAL: [Config] Error reading configuration file: %v", err)
		}
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("FATAL: [Config] Failed to unmarshal configuration: %v", err)
	}

	// Environment variable overrides (deployment secrets and identities).
	if token := os.Getenv("FAQBOT_TOKEN"); token != "" {
		AppConfig.Bot.Token = token
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		AppConfig.Oracle.Gemini.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		AppConfig.Oracle.OpenAI.APIKey = key
	}
	if url := os.Getenv("WEBHOOK_URL"); url != "" {
		AppConfig.Bot.WebhookURL = url
	}
	if port := os.Getenv("PORT"); port != "" {
		AppConfig.Server.Port = port
		log.Printf("INFO: [Config] Server port overridden by environment variable PORT: %s", port)
	}
	if groupID := os.Getenv("ALLOWED_GROUP_ID"); groupID != "" {
		id, err := strconv.ParseInt(groupID, 10, 64)
		if err != nil {
			log.Fatalf("FATAL: [Config] ALLOWED_GROUP_ID is not a valid integer: %v", err)
		}
		AppConfig.Bot.AllowedGroupID = id
	}
	if adminID := os.Getenv("ADMIN_USER_ID"); adminID != "" {
		id, err := strconv.ParseInt(adminID, 10, 64)
		if err != nil {
			log.Fatalf("FATAL: [Config] ADMIN_USER_ID is not a valid integer: %v", err)
		}
		AppConfig.Bot.AdminUserID = id
	}

	validate(&AppConfig)
	log.Println("INFO: [Config] Configuration loading complete.")
}

// validate enforces the startup invariants. Missing identities or an
// inverted working-hours window are configuration errors and fatal.
func validate(cfg *Config) {
	if cfg.Bot.Token == "" {
		log.Fatal("FATAL: [Config] Bot token is not set (FAQBOT_TOKEN).")
	}
	if cfg.Bot.AllowedGroupID == 0 {
		log.Fatal("FATAL: [Config] Allowed group id is not set (ALLOWED_GROUP_ID).")
	}
	if cfg.Bot.AdminUserID == 0 {
		log.Fatal("FATAL: [Config] Admin user id is not set (ADMIN_USER_ID).")
	}
	if cfg.WorkingHours.Start < 0 || cfg.WorkingHours.End > 24 || cfg.WorkingHours.Start >= cfg.WorkingHours.End {
		log.Fatalf("FATAL: [Config] Working hours window [%d, %d) is invalid; start must be before end and the window may not wrap midnight.",
			cfg.WorkingHours.Start, cfg.WorkingHours.End)
	}
	if cfg.Bot.Mode == "webhook" && cfg.Bot.WebhookURL == "" {
		log.Fatal("FATAL: [Config] Webhook mode requires WEBHOOK_URL to be set.")
	}
	switch cfg.Oracle.Provider {
	case "gemini":
		if cfg.Oracle.Gemini.APIKey == "" {
			log.Fatal("FATAL: [Config] Gemini oracle selected but GEMINI_API_KEY is not set.")
		}
	case "openai":
		if cfg.Oracle.OpenAI.APIKey == "" {
			log.Fatal("FATAL: [Config] OpenAI oracle selected but OPENAI_API_KEY is not set.")
		}
	default:
		log.Fatalf("FATAL: [Config] Unknown oracle provider %q (expected \"gemini\" or \"openai\").", cfg.Oracle.Provider)
	}
}
