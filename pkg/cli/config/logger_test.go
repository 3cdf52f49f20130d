package config_test

import (
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/refsyncd/refsyncd/pkg/cli/config"
)

func TestLogger_Configure(t *testing.T) {
	tests := []struct {
		name  string
		level string
		json  bool
	}{
		{
			name:  "debug level",
			level: "debug",
		},
		{
			name:  "info level",
			level: "info",
		},
		{
			name:  "warn level",
			level: "warn",
		},
		{
			name:  "error level",
			level: "error",
		},
		{
			name:  "unknown level falls back to info",
			level: "chatty",
		},
		{
			name:  "JSON output",
			level: "info",
			json:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &config.Logger{
				Level: tt.level,
				JSON:  tt.json,
			}

			result, err := logger.Configure()
			if err != nil {
				t.Fatalf("Configure() unexpected error = %v", err)
			}
			if result == nil {
				t.Fatal("Configure() returned nil logger")
			}

			// Logger must be usable at every level
			result.Debug("debug message")
			result.Info("info message")
			result.Warn("warn message")
			result.Error("error message")
		})
	}
}

func TestConfig_Flags(t *testing.T) {
	collect := func(flags []cli.Flag) map[string]bool {
		names := make(map[string]bool)
		for _, flag := range flags {
			switch f := flag.(type) {
			case interface{ Names() []string }:
				if ns := f.Names(); len(ns) > 0 {
					names[ns[0]] = true
				}
			}
		}
		return names
	}

	wantFlags := func(t *testing.T, got map[string]bool, want ...string) {
		t.Helper()
		for _, w := range want {
			if !got[w] {
				t.Errorf("Missing %s flag", w)
			}
		}
	}

	t.Run("logger flags", func(t *testing.T) {
		wantFlags(t, collect((&config.Logger{}).Flags()), "log-level", "log-json")
	})

	t.Run("server flags", func(t *testing.T) {
		wantFlags(t, collect((&config.Server{}).Flags()), "addr")
	})

	t.Run("mirror flags", func(t *testing.T) {
		wantFlags(t, collect((&config.Mirror{}).Flags()),
			"source-url", "mirror-url", "mirror-token", "rules", "journal",
			"retry-attempts", "retry-backoff")
	})

	t.Run("github flags", func(t *testing.T) {
		wantFlags(t, collect((&config.GitHub{}).Flags()),
			"github-webhook-secret", "github-app-id", "github-installation-id", "github-private-key")
	})
}

func TestMirror_Rules(t *testing.T) {
	t.Run("defaults when no path", func(t *testing.T) {
		cfg := &config.Mirror{}
		rs, err := cfg.Rules()
		if err != nil {
			t.Fatalf("Rules() unexpected error = %v", err)
		}
		if len(rs.Branches) == 0 || len(rs.Tags) == 0 {
			t.Error("default ruleset should define branch and tag patterns")
		}
	})

	t.Run("missing file errors", func(t *testing.T) {
		cfg := &config.Mirror{RulesPath: "/does/not/exist.toml"}
		if _, err := cfg.Rules(); err == nil {
			t.Error("Rules() should fail for a missing file")
		}
	})
}

func TestGitHub_AppAuth(t *testing.T) {
	t.Run("missing installation ID", func(t *testing.T) {
		cfg := &config.GitHub{AppID: 123}
		if _, err := cfg.AppAuth(); err == nil {
			t.Error("AppAuth() should fail without installation ID")
		}
	})

	t.Run("missing private key path", func(t *testing.T) {
		cfg := &config.GitHub{AppID: 123, InstallationID: 456}
		if _, err := cfg.AppAuth(); err == nil {
			t.Error("AppAuth() should fail without a private key path")
		}
	})

	t.Run("missing key file", func(t *testing.T) {
		cfg := &config.GitHub{AppID: 123, InstallationID: 456, PrivateKeyPath: "/no/such/key.pem"}
		if _, err := cfg.AppAuth(); err == nil {
			t.Error("AppAuth() should fail when the key file cannot be read")
		}
	})
}
