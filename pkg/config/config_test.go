package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("CHOOSER_IS_N", "")
	t.Setenv("CHOOSER_REPS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}

	if cfg.Study.ISLength != 1000 {
		t.Errorf("Expected ISLength to be 1000, got %d", cfg.Study.ISLength)
	}

	if cfg.Study.Replications != 1 {
		t.Errorf("Expected Replications to be 1, got %d", cfg.Study.Replications)
	}

	if cfg.Study.Seed != 123456789 {
		t.Errorf("Expected Seed to be 123456789, got %d", cfg.Study.Seed)
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("CHOOSER_IS_N", "250")
	t.Setenv("CHOOSER_OOS1_N", "20")
	t.Setenv("CHOOSER_REPS", "100")
	t.Setenv("CHOOSER_WORKERS", "4")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Env != "production" {
		t.Errorf("Expected Env to be production, got %s", cfg.Env)
	}

	if cfg.Study.ISLength != 250 || cfg.Study.OOS1Length != 20 {
		t.Errorf("Expected IS/OOS1 250/20, got %d/%d", cfg.Study.ISLength, cfg.Study.OOS1Length)
	}

	if cfg.Study.Replications != 100 {
		t.Errorf("Expected Replications to be 100, got %d", cfg.Study.Replications)
	}

	if cfg.Study.Workers != 4 {
		t.Errorf("Expected Workers to be 4, got %d", cfg.Study.Workers)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("Expected LogLevel to be debug, got %s", cfg.LogLevel)
	}
}

func TestValidateInvalidEnv(t *testing.T) {
	t.Setenv("ENV", "invalid")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when ENV is invalid, got nil")
	}
}

func TestValidateInvalidWorkers(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("CHOOSER_WORKERS", "0")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when CHOOSER_WORKERS is 0, got nil")
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "2h")

	duration := getEnvAsDuration("TEST_DURATION", "1h")
	expected := 2 * time.Hour

	if duration != expected {
		t.Errorf("Expected duration to be %v, got %v", expected, duration)
	}
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("TEST_INT", "100")

	value := getEnvAsInt("TEST_INT", 50)
	if value != 100 {
		t.Errorf("Expected value to be 100, got %d", value)
	}

	t.Setenv("TEST_INT", "abc")
	if got := getEnvAsInt("TEST_INT", 50); got != 50 {
		t.Errorf("Expected fallback 50, got %d", got)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")

	value := getEnvAsBool("TEST_BOOL", false)
	if value != true {
		t.Errorf("Expected value to be true, got %v", value)
	}
}
