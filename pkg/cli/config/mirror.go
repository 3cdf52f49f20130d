package config

import (
	"time"

	"github.com/urfave/cli/v3"

	"github.com/refsyncd/refsyncd/pkg/rules"
	"github.com/refsyncd/refsyncd/pkg/usecase"
)

// Mirror holds the mirroring configuration: the two repositories, the push
// credential, the rules file and the journal location.
type Mirror struct {
	SourceURL string
	MirrorURL string
	Token     string
	RulesPath string
	Journal   string

	RetryAttempts int64
	RetryBackoff  time.Duration
}

// Flags returns CLI flags for mirror configuration
func (c *Mirror) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "source-url",
			Usage:       "Source repository URL",
			Required:    true,
			Destination: &c.SourceURL,
			Sources:     cli.EnvVars("REFSYNCD_SOURCE_URL"),
		},
		&cli.StringFlag{
			Name:        "mirror-url",
			Usage:       "Mirror repository URL",
			Required:    true,
			Destination: &c.MirrorURL,
			Sources:     cli.EnvVars("REFSYNCD_MIRROR_URL"),
		},
		&cli.StringFlag{
			Name:        "mirror-token",
			Usage:       "Secret token for source/mirror authentication",
			Destination: &c.Token,
			Sources:     cli.EnvVars("REFSYNCD_MIRROR_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "rules",
			Usage:       "Path to TOML rules file (built-in rules when empty)",
			Destination: &c.RulesPath,
			Sources:     cli.EnvVars("REFSYNCD_RULES"),
		},
		&cli.StringFlag{
			Name:        "journal",
			Usage:       "Path to the bbolt journal database",
			Value:       "refsyncd.db",
			Destination: &c.Journal,
			Sources:     cli.EnvVars("REFSYNCD_JOURNAL"),
		},
		&cli.Int64Flag{
			Name:        "retry-attempts",
			Usage:       "Max mirror attempts per ref (1 disables retry)",
			Value:       3,
			Destination: &c.RetryAttempts,
			Sources:     cli.EnvVars("REFSYNCD_RETRY_ATTEMPTS"),
		},
		&cli.DurationFlag{
			Name:        "retry-backoff",
			Usage:       "Initial backoff between mirror attempts",
			Value:       500 * time.Millisecond,
			Destination: &c.RetryBackoff,
			Sources:     cli.EnvVars("REFSYNCD_RETRY_BACKOFF"),
		},
	}
}

// Rules loads the configured ruleset, falling back to the defaults.
func (c *Mirror) Rules() (*rules.RuleSet, error) {
	if c.RulesPath == "" {
		return rules.Default(), nil
	}
	return rules.Load(c.RulesPath)
}

// Retry builds the retry configuration from the flags.
func (c *Mirror) Retry() usecase.RetryConfig {
	cfg := usecase.DefaultRetryConfig()
	if c.RetryAttempts > 0 {
		cfg.MaxAttempts = int(c.RetryAttempts)
	}
	if c.RetryBackoff > 0 {
		cfg.InitialBackoff = c.RetryBackoff
	}
	return cfg
}
