package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("SJ_TEST_VALUE", "set")
	if got := GetEnv("SJ_TEST_VALUE", "fallback"); got != "set" {
		t.Errorf("GetEnv = %q, want set", got)
	}
	if got := GetEnv("SJ_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("GetEnv unset = %q, want fallback", got)
	}

	t.Setenv("SJ_TEST_EMPTY", "")
	if got := GetEnv("SJ_TEST_EMPTY", "fallback"); got != "" {
		t.Errorf("GetEnv empty = %q, want empty string", got)
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		set   bool
		want  time.Duration
	}{
		{"unset", "", false, time.Second},
		{"valid", "250ms", true, 250 * time.Millisecond},
		{"malformed", "soon", true, time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.set {
				t.Setenv("SJ_TEST_DURATION", tt.value)
			}
			if got := GetEnvDuration("SJ_TEST_DURATION", time.Second); got != tt.want {
				t.Errorf("GetEnvDuration = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		set      bool
		fallback bool
		want     bool
	}{
		{"unset", "", false, true, true},
		{"true", "true", true, false, true},
		{"one", "1", true, false, true},
		{"false", "false", true, true, false},
		{"malformed", "maybe", true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.set {
				t.Setenv("SJ_TEST_BOOL", tt.value)
			}
			if got := GetEnvBool("SJ_TEST_BOOL", tt.fallback); got != tt.want {
				t.Errorf("GetEnvBool = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("SJ_DOTENV_NEW=from-file\nSJ_DOTENV_SET=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SJ_DOTENV_SET", "from-env")
	// Registers cleanup for the variable the file introduces.
	t.Setenv("SJ_DOTENV_NEW", "")
	os.Unsetenv("SJ_DOTENV_NEW")

	if err := LoadDotEnv(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("SJ_DOTENV_NEW"); got != "from-file" {
		t.Errorf("SJ_DOTENV_NEW = %q, want from-file", got)
	}
	if got := os.Getenv("SJ_DOTENV_SET"); got != "from-env" {
		t.Errorf("SJ_DOTENV_SET = %q, existing variable overwritten", got)
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("LoadDotEnv missing file: %v", err)
	}
}

func TestNewLoggerLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	if got := NewLogger("test").GetLevel(); got != log.DebugLevel {
		t.Errorf("level = %v, want debug", got)
	}

	t.Setenv("LOG_LEVEL", "bogus")
	if got := NewLogger("test").GetLevel(); got != log.InfoLevel {
		t.Errorf("level = %v, want info for unknown LOG_LEVEL", got)
	}
}
