package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for the bot, read from environment variables.
type Config struct {
	// Bot
	BotToken string `env:"BOT_TOKEN"`
	BotName  string `env:"BOT_NAME" envDefault:"Terabox Leech Bot"`
	OwnerID  int64  `env:"OWNER_ID"`

	// MTProto app credentials. Accepted for deployment compatibility;
	// the bot runs purely on the Bot API and never uses them.
	TelegramAPI  string `env:"TELEGRAM_API"`
	TelegramHash string `env:"TELEGRAM_HASH"`

	// Storage
	DatabaseURL string `env:"DATABASE_URL"`
	RedisAddr   string `env:"REDIS_ADDR"`
	RedisPass   string `env:"REDIS_PASS"`
	RedisDB     int    `env:"REDIS_DB" envDefault:"0"`

	// Downloads
	DownloadDir string `env:"DOWNLOAD_DIR" envDefault:"downloads"`
	MaxFileSize int64  `env:"MAX_FILE_SIZE" envDefault:"52428800"` // 50MB

	// Channels
	LeechLogChannel int64 `env:"LEECH_LOG_CHANNEL"`
	DumpChannel     int64 `env:"DUMP_CHANNEL"`

	// Verification
	VerificationEnabled bool          `env:"VERIFICATION_ENABLED" envDefault:"false"`
	FreeLeechCount      int           `env:"FREE_LEECH_COUNT" envDefault:"5"`
	VerifyValidity      time.Duration `env:"VERIFY_VALIDITY_TIME" envDefault:"24h"`
	VerifyBaseURL       string        `env:"VERIFY_BASE_URL"`

	// Shortlink provider
	ShortlinkAPI  string `env:"SHORTLINK_API"`
	ShortlinkURL  string `env:"SHORTLINK_URL"`
	ShortlinkType string `env:"SHORTLINK_TYPE"`

	// Access control. Space-separated user IDs; empty means public bot.
	AuthorizedChats string `env:"AUTHORIZED_CHATS"`

	// Force subscription. Space-separated channels (@username or numeric
	// chat ID); empty disables the gate.
	EnableForceSub   bool   `env:"ENABLE_FORCE_SUB" envDefault:"true"`
	ForceSubChannels string `env:"FORCE_SUB_CHANNELS"`

	// HTTP server
	Port int `env:"PORT" envDefault:"8000"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.OwnerID == 0 {
		return fmt.Errorf("OWNER_ID is required")
	}
	if c.VerificationEnabled && c.ShortlinkAPI == "" {
		return fmt.Errorf("SHORTLINK_API is required when VERIFICATION_ENABLED is set")
	}
	if c.VerificationEnabled && c.VerifyBaseURL == "" {
		return fmt.Errorf("VERIFY_BASE_URL is required when VERIFICATION_ENABLED is set")
	}
	return nil
}

// QuotaEnabled reports whether the free-download quota applies at all.
// A non-positive FREE_LEECH_COUNT means unlimited downloads.
func (c *Config) QuotaEnabled() bool {
	return c.VerificationEnabled && c.FreeLeechCount > 0
}
