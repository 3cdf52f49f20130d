package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/refsyncd/refsyncd/pkg/infra/git"
)

// GitHub holds GitHub configuration: the webhook secret and optional App
// credentials for pushing as a GitHub App installation.
type GitHub struct {
	WebhookSecret  string
	AppID          int64
	InstallationID int64
	PrivateKeyPath string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "GitHub webhook secret",
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("REFSYNCD_GITHUB_WEBHOOK_SECRET"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID (enables App authentication)",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("REFSYNCD_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("REFSYNCD_GITHUB_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-private-key",
			Usage:       "Path to the GitHub App private key (PEM)",
			Destination: &c.PrivateKeyPath,
			Sources:     cli.EnvVars("REFSYNCD_GITHUB_PRIVATE_KEY"),
		},
	}
}

// UseApp reports whether App credentials were provided.
func (c *GitHub) UseApp() bool {
	return c.AppID != 0
}

// AppAuth builds an App auth provider from the configured credentials.
func (c *GitHub) AppAuth() (*git.AppAuth, error) {
	if c.InstallationID == 0 {
		return nil, goerr.New("github-installation-id is required with github-app-id")
	}
	if c.PrivateKeyPath == "" {
		return nil, goerr.New("github-private-key is required with github-app-id")
	}

	key, err := os.ReadFile(c.PrivateKeyPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read App private key", goerr.V("path", c.PrivateKeyPath))
	}

	return git.NewAppAuth(c.AppID, c.InstallationID, key)
}
