package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Errorf("run_mode = %q, want longpoll", cfg.Telegram.RunMode)
	}
	if cfg.Quiz.AnswerDelayMS != defaultAnswerDelayMS {
		t.Errorf("answer_delay_ms = %d, want %d", cfg.Quiz.AnswerDelayMS, defaultAnswerDelayMS)
	}
	if cfg.Quiz.RankedMinimum != defaultRankedMin {
		t.Errorf("ranked_minimum = %d, want %d", cfg.Quiz.RankedMinimum, defaultRankedMin)
	}
	if cfg.Leaderboard.Backend != BackendFile {
		t.Errorf("backend = %q, want file", cfg.Leaderboard.Backend)
	}
	if cfg.Leaderboard.File != defaultBoardFile {
		t.Errorf("leaderboard file = %q, want %q", cfg.Leaderboard.File, defaultBoardFile)
	}
}

func TestNormalizeRejectsMissingToken(t *testing.T) {
	err := Normalize(&Config{})
	if err == nil || !strings.Contains(err.Error(), "token") {
		t.Fatalf("expected token error, got %v", err)
	}
}

func TestNormalizeRunModeAlias(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{Token: "t", RunMode: "polling"}}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Errorf("run_mode = %q, want longpoll", cfg.Telegram.RunMode)
	}
}

func TestNormalizeWebhookRequiresURL(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{Token: "t", RunMode: "webhook"}}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected webhook.url error")
	}
}

func TestNormalizePostgresRequiresHost(t *testing.T) {
	cfg := &Config{
		Telegram:    TelegramConfig{Token: "t"},
		Leaderboard: LeaderboardConfig{Backend: "postgres"},
	}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected database.host error")
	}
}

func TestNormalizeRejectsUnknownBackend(t *testing.T) {
	cfg := &Config{
		Telegram:    TelegramConfig{Token: "t"},
		Leaderboard: LeaderboardConfig{Backend: "redis"},
	}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected backend error")
	}
}
