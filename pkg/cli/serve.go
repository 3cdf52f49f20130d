package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/refsyncd/refsyncd/pkg/cli/config"
	controller "github.com/refsyncd/refsyncd/pkg/controller/http"
	"github.com/refsyncd/refsyncd/pkg/utils/async"
)

func cmdServe() *cli.Command {
	var (
		serverCfg config.Server
		githubCfg config.GitHub
		mirrorCfg config.Mirror
	)

	flags := append(serverCfg.Flags(), githubCfg.Flags()...)
	flags = append(flags, mirrorCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start webhook server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting refsyncd server",
				slog.String("addr", serverCfg.Addr),
				slog.String("source", mirrorCfg.SourceURL),
				slog.String("mirror", mirrorCfg.MirrorURL),
			)

			mirrorUC, journal, err := newMirrorUseCase(&mirrorCfg, &githubCfg)
			if err != nil {
				return err
			}
			defer journal.Close()

			dispatcher := async.New()

			server, err := controller.NewServer(
				ctx,
				mirrorUC,
				controller.WithAddr(serverCfg.Addr),
				controller.WithWebhookSecret(githubCfg.WebhookSecret),
				controller.WithDispatcher(dispatcher),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			// Drain in-flight mirror jobs before closing the journal.
			if err := dispatcher.Wait(shutdownCtx); err != nil {
				logger.Warn("Shutdown with mirror jobs still running", slog.Any("error", err))
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
