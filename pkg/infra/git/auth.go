package git

import (
	"context"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/m-mizutani/goerr/v2"
)

// AuthProvider resolves the authentication method for a remote URL.
// Implementations may mint short-lived credentials per call.
type AuthProvider interface {
	Method(ctx context.Context, remoteURL string) (transport.AuthMethod, error)
}

// TokenAuth authenticates with a static secret token over HTTPS basic auth.
// GitHub, GitLab and Bitbucket all accept the token as password.
type TokenAuth struct {
	token string
}

// NewTokenAuth creates a TokenAuth. An empty token yields unauthenticated
// access, which is fine for public source repositories.
func NewTokenAuth(token string) *TokenAuth {
	return &TokenAuth{token: token}
}

// Method implements AuthProvider.
func (a *TokenAuth) Method(ctx context.Context, remoteURL string) (transport.AuthMethod, error) {
	if a.token == "" {
		return nil, nil
	}
	return &githttp.BasicAuth{
		Username: "x-access-token",
		Password: a.token,
	}, nil
}

// AppAuth authenticates as a GitHub App installation. Tokens are minted per
// operation, so long-running daemons never push with an expired credential.
type AppAuth struct {
	transport *ghinstallation.Transport
}

// NewAppAuth creates an AppAuth from App credentials. privateKey is the PEM
// encoded App private key.
func NewAppAuth(appID, installationID int64, privateKey []byte) (*AppAuth, error) {
	itr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport")
	}

	return &AppAuth{transport: itr}, nil
}

// Method implements AuthProvider by minting an installation token.
func (a *AppAuth) Method(ctx context.Context, remoteURL string) (transport.AuthMethod, error) {
	token, err := a.transport.Token(ctx)
	if err != nil {
		return nil, goerr.Wrap(ErrAuthFailed, "failed to mint installation token", goerr.V("cause", err.Error()))
	}

	return &githttp.BasicAuth{
		Username: "x-access-token",
		Password: token,
	}, nil
}
