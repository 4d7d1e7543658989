package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/u1f408/accord/core"
	"github.com/u1f408/accord/core/log"
	"github.com/u1f408/accord/utils"
)

const (
	defaultTargetTimeout        = 30 * time.Second
	defaultDispatchWorkers      = 32
	defaultCacheMessagesPerChan = 100
)

type DiscordConfig struct {
	BotToken string
}

type TargetConfig struct {
	BaseURL string
	Timeout time.Duration
	// CommandPattern is nil when command recognition is disabled
	CommandPattern *regexp.Regexp
}

type AppConfig struct {
	Environment             string
	HealthPort              string // Optional, health endpoint disabled when empty
	DispatchWorkers         int
	CacheMessagesPerChannel int
	SlackAlertWebhookURL    string
	LockDir                 string

	DiscordConfig DiscordConfig
	TargetConfig  TargetConfig
}

// LoadConfig reads configuration from the environment, after loading envFile when given
// or ./.env when present.
func LoadConfig(envFile string) (*AppConfig, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil {
		log.Debug("⚠️ Could not load .env file, continuing with system env vars")
	}

	botToken, err := getEnvRequired("DISCORD_TOKEN")
	if err != nil {
		return nil, err
	}

	target, err := getEnvRequired("ACCORD_TARGET")
	if err != nil {
		return nil, err
	}
	if err := validateTargetURL(target); err != nil {
		return nil, err
	}

	commandPattern, err := utils.CompileCommandPattern(os.Getenv("ACCORD_COMMAND_REGEX"))
	if err != nil {
		return nil, fmt.Errorf("ACCORD_COMMAND_REGEX: %w: %w", core.ErrInvalidCommandPattern, err)
	}

	timeout, err := getEnvDuration("ACCORD_TARGET_TIMEOUT", defaultTargetTimeout)
	if err != nil {
		return nil, err
	}

	workers, err := getEnvInt("DISPATCH_WORKERS", defaultDispatchWorkers)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		return nil, fmt.Errorf("DISPATCH_WORKERS must be positive, got %d", workers)
	}

	cacheSize, err := getEnvInt("CACHE_MESSAGES_PER_CHANNEL", defaultCacheMessagesPerChan)
	if err != nil {
		return nil, err
	}
	if cacheSize < 0 {
		return nil, fmt.Errorf("CACHE_MESSAGES_PER_CHANNEL must not be negative, got %d", cacheSize)
	}

	config := &AppConfig{
		Environment:             getEnvWithDefault("ENVIRONMENT", "dev"),
		HealthPort:              os.Getenv("HEALTH_PORT"),
		DispatchWorkers:         workers,
		CacheMessagesPerChannel: cacheSize,
		SlackAlertWebhookURL:    os.Getenv("SLACK_ALERT_WEBHOOK_URL"),
		LockDir:                 getEnvWithDefault("ACCORD_LOCK_DIR", filepath.Join(os.TempDir(), "accord")),

		DiscordConfig: DiscordConfig{
			BotToken: botToken,
		},
		TargetConfig: TargetConfig{
			BaseURL:        target,
			Timeout:        timeout,
			CommandPattern: commandPattern,
		},
	}

	if config.TargetConfig.CommandPattern != nil {
		log.Info("✅ Command recognition enabled with pattern %s", config.TargetConfig.CommandPattern)
	} else {
		log.Info("⚠️ ACCORD_COMMAND_REGEX not set - command recognition disabled")
	}
	if config.SlackAlertWebhookURL == "" {
		log.Info("⚠️ SLACK_ALERT_WEBHOOK_URL not set - error alerts disabled")
	}

	return config, nil
}

func validateTargetURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("ACCORD_TARGET is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("ACCORD_TARGET must be an http(s) URL, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("ACCORD_TARGET has no host: %q", raw)
	}
	return nil
}

func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set", key)
	}
	return value, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, parsed)
	}
	return parsed, nil
}
