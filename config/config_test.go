package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/u1f408/accord/core"
)

var configKeys = []string{
	"DISCORD_TOKEN",
	"ACCORD_TARGET",
	"ACCORD_COMMAND_REGEX",
	"ACCORD_TARGET_TIMEOUT",
	"DISPATCH_WORKERS",
	"CACHE_MESSAGES_PER_CHANNEL",
	"HEALTH_PORT",
	"ENVIRONMENT",
	"SLACK_ALERT_WEBHOOK_URL",
	"ACCORD_LOCK_DIR",
}

// clearEnv unsets every config key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	// run from an empty directory so a developer's .env is never picked up
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("ACCORD_TARGET", "http://localhost:8080")
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	setRequired(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.DiscordConfig.BotToken)
	assert.Equal(t, "http://localhost:8080", cfg.TargetConfig.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.TargetConfig.Timeout)
	assert.Nil(t, cfg.TargetConfig.CommandPattern)
	assert.Equal(t, 32, cfg.DispatchWorkers)
	assert.Equal(t, 100, cfg.CacheMessagesPerChannel)
	assert.Equal(t, "dev", cfg.Environment)
	assert.Empty(t, cfg.HealthPort)
	assert.Empty(t, cfg.SlackAlertWebhookURL)
	assert.Equal(t, filepath.Join(os.TempDir(), "accord"), cfg.LockDir)
}

func TestLoadConfig_Overrides(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("ACCORD_COMMAND_REGEX", `^!echo (\w+)$`)
	t.Setenv("ACCORD_TARGET_TIMEOUT", "5s")
	t.Setenv("DISPATCH_WORKERS", "4")
	t.Setenv("CACHE_MESSAGES_PER_CHANNEL", "0")
	t.Setenv("HEALTH_PORT", "9090")
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("SLACK_ALERT_WEBHOOK_URL", "https://hooks.slack.com/services/x")
	t.Setenv("ACCORD_LOCK_DIR", "/run/accord")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	require.NotNil(t, cfg.TargetConfig.CommandPattern)
	assert.Equal(t, []string{"!echo hello", "hello"}, cfg.TargetConfig.CommandPattern.FindStringSubmatch("!echo hello"))
	assert.Equal(t, 5*time.Second, cfg.TargetConfig.Timeout)
	assert.Equal(t, 4, cfg.DispatchWorkers)
	assert.Equal(t, 0, cfg.CacheMessagesPerChannel)
	assert.Equal(t, "9090", cfg.HealthPort)
	assert.Equal(t, "prod", cfg.Environment)
	assert.Equal(t, "https://hooks.slack.com/services/x", cfg.SlackAlertWebhookURL)
	assert.Equal(t, "/run/accord", cfg.LockDir)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	clearEnv(t)
	t.Cleanup(func() {
		for _, key := range configKeys {
			os.Unsetenv(key)
		}
	})

	envFile := filepath.Join(t.TempDir(), "accord.env")
	content := "DISCORD_TOKEN=file-token\nACCORD_TARGET=https://example.com/hooks\nDISPATCH_WORKERS=2\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.DiscordConfig.BotToken)
	assert.Equal(t, "https://example.com/hooks", cfg.TargetConfig.BaseURL)
	assert.Equal(t, 2, cfg.DispatchWorkers)
}

func TestLoadConfig_MissingEnvFile(t *testing.T) {
	clearEnv(t)
	setRequired(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidCommandPattern(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("ACCORD_COMMAND_REGEX", `^!echo (\w+$`)

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidCommandPattern)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing token",
			env:  map[string]string{"ACCORD_TARGET": "http://localhost"},
		},
		{
			name: "missing target",
			env:  map[string]string{"DISCORD_TOKEN": "token"},
		},
		{
			name: "relative target",
			env:  map[string]string{"DISCORD_TOKEN": "token", "ACCORD_TARGET": "/just/a/path"},
		},
		{
			name: "non-http target",
			env:  map[string]string{"DISCORD_TOKEN": "token", "ACCORD_TARGET": "ftp://localhost"},
		},
		{
			name: "invalid timeout",
			env:  map[string]string{"DISCORD_TOKEN": "token", "ACCORD_TARGET": "http://localhost", "ACCORD_TARGET_TIMEOUT": "soon"},
		},
		{
			name: "zero timeout",
			env:  map[string]string{"DISCORD_TOKEN": "token", "ACCORD_TARGET": "http://localhost", "ACCORD_TARGET_TIMEOUT": "0s"},
		},
		{
			name: "non-numeric workers",
			env:  map[string]string{"DISCORD_TOKEN": "token", "ACCORD_TARGET": "http://localhost", "DISPATCH_WORKERS": "many"},
		},
		{
			name: "zero workers",
			env:  map[string]string{"DISCORD_TOKEN": "token", "ACCORD_TARGET": "http://localhost", "DISPATCH_WORKERS": "0"},
		},
		{
			name: "negative cache size",
			env:  map[string]string{"DISCORD_TOKEN": "token", "ACCORD_TARGET": "http://localhost", "CACHE_MESSAGES_PER_CHANNEL": "-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			cfg, err := LoadConfig("")
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
