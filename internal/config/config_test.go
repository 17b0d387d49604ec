package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.RequiredPlayers != 5 {
		t.Errorf("RequiredPlayers = %d, want 5", cfg.RequiredPlayers)
	}
	if cfg.QuestionCount != 24 {
		t.Errorf("QuestionCount = %d, want 24", cfg.QuestionCount)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REQUIRED_PLAYERS", "3")
	t.Setenv("QUESTION_COUNT", "10")
	t.Setenv("SERVER_PORT", "9090")

	cfg := Load()
	if cfg.RequiredPlayers != 3 || cfg.QuestionCount != 10 || cfg.ServerPort != "9090" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoadRejectsBadInts(t *testing.T) {
	t.Setenv("REQUIRED_PLAYERS", "zero")
	t.Setenv("QUESTION_COUNT", "-4")

	cfg := Load()
	if cfg.RequiredPlayers != 5 || cfg.QuestionCount != 24 {
		t.Errorf("bad values not rejected: players=%d questions=%d",
			cfg.RequiredPlayers, cfg.QuestionCount)
	}
}
