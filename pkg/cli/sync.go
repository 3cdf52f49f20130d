package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/refsyncd/refsyncd/pkg/cli/config"
	"github.com/refsyncd/refsyncd/pkg/domain/model"
	"github.com/refsyncd/refsyncd/pkg/domain/types"
)

func cmdSync() *cli.Command {
	var (
		githubCfg config.GitHub
		mirrorCfg config.Mirror
	)

	flags := append(mirrorCfg.Flags(), githubCfg.Flags()...)

	return &cli.Command{
		Name:      "sync",
		Usage:     "Mirror refs now (all matching refs, or the named ones)",
		ArgsUsage: "[ref ...]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			mirrorUC, journal, err := newMirrorUseCase(&mirrorCfg, &githubCfg)
			if err != nil {
				return err
			}
			defer journal.Close()

			refs := c.Args().Slice()
			if len(refs) == 0 {
				records, err := mirrorUC.SyncAll(ctx)
				if err != nil {
					return goerr.Wrap(err, "sync failed")
				}
				logger.Info("Sync complete", slog.Int("refs", len(records)))
				return nil
			}

			var failed int
			for _, raw := range refs {
				ref, err := model.ParseRef(raw)
				if err != nil {
					return goerr.Wrap(err, "invalid ref", goerr.V("ref", raw))
				}

				if _, err := mirrorUC.SyncRef(ctx, ref, types.TriggerManual); err != nil {
					failed++
				}
			}

			if failed > 0 {
				return goerr.New("some refs failed to mirror", goerr.V("failed", failed), goerr.V("total", len(refs)))
			}

			logger.Info("Sync complete", slog.Int("refs", len(refs)))
			return nil
		},
	}
}
