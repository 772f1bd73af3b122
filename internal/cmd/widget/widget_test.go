package widget

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("widget", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8090" {
		t.Fatalf("expected default api url, got %q", cfg.APIBaseURL)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("GREEN_BUDDY_API_URL", "http://env:1234")
	t.Setenv("GREEN_BUDDY_TOKEN", "env-token")

	fs := flag.NewFlagSet("widget", flag.ContinueOnError)
	args := []string{
		"-api-url", "http://flag:5678",
		"-token", "flag-token",
	}
	cfg, err := ParseConfig(fs, args)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.APIBaseURL != "http://flag:5678" {
		t.Fatalf("expected flag api url, got %q", cfg.APIBaseURL)
	}
	if cfg.Token != "flag-token" {
		t.Fatalf("expected flag token, got %q", cfg.Token)
	}
}

func TestParseConfigEnvOnly(t *testing.T) {
	t.Setenv("GREEN_BUDDY_API_URL", "http://env:1234")

	fs := flag.NewFlagSet("widget", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.APIBaseURL != "http://env:1234" {
		t.Fatalf("expected env api url, got %q", cfg.APIBaseURL)
	}
}
