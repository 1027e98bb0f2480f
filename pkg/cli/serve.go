package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/cli/config"
	httpctrl "github.com/secmon-lab/themis/pkg/controller/http"
	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/secmon-lab/themis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe(version string) *cli.Command {
	var addr string
	var debug bool
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var blobCfg config.Blob
	var authCfg config.Auth
	var limitCfg config.RateLimit
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("THEMIS_ADDR"),
			Destination: &addr,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "Expose internal error messages in API responses (development only)",
			Sources:     cli.EnvVars("THEMIS_DEBUG"),
			Destination: &debug,
		},
	}

	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, blobCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)
	flags = append(flags, limitCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return err
			}
			defer flush()

			facility, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load facility configuration")
			}
			logging.Default().Info("Facility configuration loaded",
				"path", appCfg.Path(),
				"category_count", len(facility.Categories),
				"max_files", facility.Upload.MaxFiles,
				"max_file_size", facility.Upload.MaxFileSize,
			)

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			store, closeStore, err := blobCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize attachment storage")
			}
			defer closeStore()

			limiter, closeLimiter, err := limitCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize rate limiter")
			}
			defer closeLimiter()

			authUC, err := authCfg.Configure(repo)
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}
			if authCfg.IsNoAuthMode() {
				logging.Default().Warn("Running in no-auth mode (development only)", "user_id", authCfg.NoAuthUID())
			}

			ucOpts := []usecase.Option{
				usecase.WithFacilityConfig(facility),
				usecase.WithBlobStore(store),
				usecase.WithAuth(authUC),
			}
			if limiter != nil {
				ucOpts = append(ucOpts, usecase.WithRateLimiter(limiter))
			}
			uc := usecase.New(repo, ucOpts...)

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpctrl.WithDebug(debug)),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr, "debug", debug)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
