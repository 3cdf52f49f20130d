package cli

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/refsyncd/refsyncd/pkg/cli/config"
	"github.com/refsyncd/refsyncd/pkg/domain/interfaces"
	"github.com/refsyncd/refsyncd/pkg/infra/git"
	"github.com/refsyncd/refsyncd/pkg/infra/journal"
	"github.com/refsyncd/refsyncd/pkg/usecase"
)

// newMirrorUseCase wires the mirror engine, journal and ruleset into the use
// case. The returned journal must be closed by the caller.
func newMirrorUseCase(mirrorCfg *config.Mirror, githubCfg *config.GitHub) (interfaces.MirrorUseCase, interfaces.Journal, error) {
	rs, err := mirrorCfg.Rules()
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to load rules")
	}

	var auth git.AuthProvider
	if githubCfg.UseApp() {
		auth, err = githubCfg.AppAuth()
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to configure GitHub App auth")
		}
	} else {
		auth = git.NewTokenAuth(mirrorCfg.Token)
	}

	syncer := git.NewSyncer(mirrorCfg.SourceURL, mirrorCfg.MirrorURL, auth)

	j, err := journal.New(mirrorCfg.Journal)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to open journal")
	}

	uc := usecase.NewMirror(syncer, j, rs, usecase.WithRetry(mirrorCfg.Retry()))
	return uc, j, nil
}
