// Package git implements the mirror engine on top of go-git. Each mirror
// operation runs against a throwaway in-memory repository: the ref is fetched
// from the source remote and force-pushed to the mirror remote, so no state
// survives between runs and no working tree is ever materialized.
package git

import (
	"context"
	"errors"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/m-mizutani/goerr/v2"

	"github.com/refsyncd/refsyncd/pkg/domain/model"
)

const (
	sourceRemote = "source"
	mirrorRemote = "mirror"
)

// Syncer copies individual refs from a source repository to a mirror
// repository. It implements interfaces.RefMirror.
type Syncer struct {
	sourceURL string
	mirrorURL string
	auth      AuthProvider
}

// NewSyncer creates a Syncer. auth resolves credentials for both remotes;
// pass NewTokenAuth("") for unauthenticated access.
func NewSyncer(sourceURL, mirrorURL string, auth AuthProvider) *Syncer {
	if auth == nil {
		auth = NewTokenAuth("")
	}
	return &Syncer{
		sourceURL: sourceURL,
		mirrorURL: mirrorURL,
		auth:      auth,
	}
}

// MirrorRef fetches the ref from the source repository and force-pushes it to
// the mirror. Returns the source commit hash that the mirror now points at.
// A mirror that is already up to date is not an error.
func (s *Syncer) MirrorRef(ctx context.Context, ref model.Ref) (string, error) {
	if ref.Kind != model.KindBranch && ref.Kind != model.KindTag {
		return "", goerr.Wrap(ErrInvalidRef, "only branches and tags can be mirrored", goerr.V("ref", ref.Name), goerr.V("kind", ref.Kind))
	}

	repo, err := gogit.Init(newStorage(), nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to initialize staging repository")
	}

	if _, err := repo.CreateRemote(&config.RemoteConfig{
		Name: sourceRemote,
		URLs: []string{s.sourceURL},
	}); err != nil {
		return "", goerr.Wrap(err, "failed to configure source remote")
	}

	if _, err := repo.CreateRemote(&config.RemoteConfig{
		Name: mirrorRemote,
		URLs: []string{s.mirrorURL},
	}); err != nil {
		return "", goerr.Wrap(err, "failed to configure mirror remote")
	}

	refspec := config.RefSpec(ref.Refspec())

	srcAuth, err := s.auth.Method(ctx, s.sourceURL)
	if err != nil {
		return "", goerr.Wrap(err, "failed to resolve source credentials")
	}

	err = repo.FetchContext(ctx, &gogit.FetchOptions{
		RemoteName: sourceRemote,
		RefSpecs:   []config.RefSpec{refspec},
		Auth:       srcAuth,
		Tags:       gogit.NoTags,
		Force:      true,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return "", classifyRemoteError(err, "failed to fetch ref from source", ref)
	}

	resolved, err := repo.Reference(plumbing.ReferenceName(ref.FullName()), true)
	if err != nil {
		return "", goerr.Wrap(ErrRefNotFound, "fetched ref is missing locally", goerr.V("ref", ref.FullName()))
	}

	mirrorAuth, err := s.auth.Method(ctx, s.mirrorURL)
	if err != nil {
		return "", goerr.Wrap(err, "failed to resolve mirror credentials")
	}

	err = repo.PushContext(ctx, &gogit.PushOptions{
		RemoteName: mirrorRemote,
		RefSpecs:   []config.RefSpec{refspec},
		Auth:       mirrorAuth,
		Force:      true,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return "", classifyRemoteError(err, "failed to push ref to mirror", ref)
	}

	return resolved.Hash().String(), nil
}

// ListRefs lists the branch and tag refs advertised by the source repository.
func (s *Syncer) ListRefs(ctx context.Context) ([]model.Ref, error) {
	remote := gogit.NewRemote(newStorage(), &config.RemoteConfig{
		Name: sourceRemote,
		URLs: []string{s.sourceURL},
	})

	srcAuth, err := s.auth.Method(ctx, s.sourceURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve source credentials")
	}

	advertised, err := remote.ListContext(ctx, &gogit.ListOptions{Auth: srcAuth})
	if err != nil {
		return nil, classifyRemoteError(err, "failed to list source refs", model.Ref{})
	}

	var refs []model.Ref
	for _, adv := range advertised {
		name := adv.Name()
		if strings.HasSuffix(name.String(), "^{}") {
			// Peeled tag advertisement, not a ref of its own.
			continue
		}
		switch {
		case name.IsBranch():
			refs = append(refs, model.Ref{Kind: model.KindBranch, Name: name.Short()})
		case name.IsTag():
			refs = append(refs, model.Ref{Kind: model.KindTag, Name: name.Short()})
		}
	}

	return refs, nil
}

// classifyRemoteError maps go-git transport errors onto this package's
// sentinel errors so callers can distinguish permanent failures.
func classifyRemoteError(err error, msg string, ref model.Ref) error {
	switch {
	case errors.Is(err, transport.ErrAuthenticationRequired),
		errors.Is(err, transport.ErrAuthorizationFailed):
		return goerr.Wrap(ErrAuthFailed, msg, goerr.V("ref", ref.Name), goerr.V("cause", err.Error()))

	case errors.Is(err, gogit.NoMatchingRefSpecError{}):
		return goerr.Wrap(ErrRefNotFound, msg, goerr.V("ref", ref.Name))

	default:
		return goerr.Wrap(err, msg, goerr.V("ref", ref.Name))
	}
}
