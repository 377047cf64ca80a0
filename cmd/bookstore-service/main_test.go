package main

import (
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestSetupLogger_Defaults(t *testing.T) {
	setupLogger()

	if log.GetLevel() != log.InfoLevel {
		t.Fatalf("expected info level, got %s", log.GetLevel())
	}
	if _, ok := log.StandardLogger().Formatter.(*log.TextFormatter); !ok {
		t.Fatalf("expected text formatter, got %T", log.StandardLogger().Formatter)
	}
}

func TestSetupLogger_EnvOverride(t *testing.T) {
	t.Setenv("BOOKSTORE_LOG_LEVEL", "debug")
	setupLogger()

	if log.GetLevel() != log.DebugLevel {
		t.Fatalf("expected debug level, got %s", log.GetLevel())
	}

	// Нераспознанный уровень не меняет дефолт.
	t.Setenv("BOOKSTORE_LOG_LEVEL", "loud")
	setupLogger()
	if log.GetLevel() != log.InfoLevel {
		t.Fatalf("expected fallback to info level, got %s", log.GetLevel())
	}
}
