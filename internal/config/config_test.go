package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider.Name != "coingecko" || cfg.Provider.PerPage != 100 {
		t.Errorf("provider defaults: %+v", cfg.Provider)
	}
	if cfg.Provider.Timeout != 30*time.Second {
		t.Errorf("timeout default: %v", cfg.Provider.Timeout)
	}
	if cfg.Engine.ConfidenceFloor != 50 || cfg.Engine.TopK != 6 || cfg.Engine.Workers != 10 {
		t.Errorf("engine defaults: %+v", cfg.Engine)
	}
	if cfg.Schedule.RefreshCron != "0 */5 * * * *" {
		t.Errorf("cron default: %q", cfg.Schedule.RefreshCron)
	}
	if cfg.Database.SQLitePath != "data/coinradar.db" {
		t.Errorf("sqlite default: %q", cfg.Database.SQLitePath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if cfg.TelegramEnabled() {
		t.Error("telegram should be disabled without credentials")
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
provider:
  per_page: 25
  volume_detail_limit: 5
engine:
  confidence_floor: 60
  top_k: 3
telegram:
  bot_token: file-token
  chat_id: "42"
kafka:
  brokers: ["k1:9092"]
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("TOP_K", "9")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider.PerPage != 25 || cfg.Provider.VolumeDetailLimit != 5 {
		t.Errorf("provider from file: %+v", cfg.Provider)
	}
	if cfg.Engine.ConfidenceFloor != 60 {
		t.Errorf("floor from file: %d", cfg.Engine.ConfidenceFloor)
	}
	if cfg.Engine.TopK != 9 {
		t.Errorf("env should override top_k, got %d", cfg.Engine.TopK)
	}
	if cfg.Telegram.BotToken != "env-token" || cfg.Telegram.ChatID != "42" {
		t.Errorf("telegram: %+v", cfg.Telegram)
	}
	if cfg.Redis.Addr != "redis:6379" || cfg.Redis.Prefix != "coinradar" {
		t.Errorf("redis: %+v", cfg.Redis)
	}
	if cfg.Kafka.Topic != "coinradar.rankings" {
		t.Errorf("kafka topic default: %q", cfg.Kafka.Topic)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if !cfg.TelegramEnabled() {
		t.Error("telegram should be enabled")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "engine: [unclosed")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"floor above 100", func(c *Config) { c.Engine.ConfidenceFloor = 101 }, "ConfidenceFloor"},
		{"unknown provider", func(c *Config) { c.Provider.Name = "binance" }, "Name"},
		{"bad base url", func(c *Config) { c.Provider.BaseURL = "not a url" }, "BaseURL"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "Level"},
		{"token without chat", func(c *Config) { c.Telegram.BotToken = "x" }, "telegram"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}
