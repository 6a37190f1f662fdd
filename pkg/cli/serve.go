package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/litmap/litmap/pkg/cli/config"
	httpctrl "github.com/litmap/litmap/pkg/controller/http"
	"github.com/litmap/litmap/pkg/service/discovery"
	"github.com/litmap/litmap/pkg/service/embedding"
	"github.com/litmap/litmap/pkg/usecase"
	"github.com/litmap/litmap/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe(version string) *cli.Command {
	var addr string
	var origins []string
	var noAuthn bool
	var jwtSecret string
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var providersCfg config.Providers
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("LITMAP_ADDR"),
			Destination: &addr,
		},
		&cli.StringSliceFlag{
			Name:        "allowed-origins",
			Usage:       "Origins permitted for cross-origin requests",
			Sources:     cli.EnvVars("LITMAP_ALLOWED_ORIGINS"),
			Destination: &origins,
		},
		&cli.StringFlag{
			Name:        "jwt-secret",
			Usage:       "Shared secret for verifying JWT bearer tokens issued by the auth service",
			Category:    "Authentication",
			Sources:     cli.EnvVars("LITMAP_JWT_SECRET"),
			Destination: &jwtSecret,
		},
		&cli.BoolFlag{
			Name:        "no-authn",
			Usage:       "Skip authentication and run every request as the anonymous user (development only)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("LITMAP_NO_AUTHN"),
			Destination: &noAuthn,
		},
	}

	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, providersCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := providersCfg.Configure(); err != nil {
				return goerr.Wrap(err, "failed to load provider tuning")
			}

			sentryCloser, err := sentryCfg.Configure(version)
			if err != nil {
				return goerr.Wrap(err, "failed to configure error tracking")
			}
			defer sentryCloser()

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Gemini client")
			}
			// Both discovery modes need embeddings for similarity links
			if llmClient == nil {
				return goerr.Wrap(config.ErrInvalidConfig, "gemini-project is required")
			}

			arxivClient := providersCfg.ArxivClient()
			scholarClient := providersCfg.ScholarClient()

			references, err := discovery.NewReferences(scholarClient)
			if err != nil {
				return goerr.Wrap(err, "failed to configure references discovery")
			}
			ucOpts := []usecase.Option{
				usecase.WithStrategy(references),
			}

			grounding, err := discovery.NewGrounding(llmClient)
			if err != nil {
				return goerr.Wrap(err, "failed to configure grounded discovery")
			}
			embedder, err := embedding.New(llmClient)
			if err != nil {
				return goerr.Wrap(err, "failed to configure embedding client")
			}
			ucOpts = append(ucOpts,
				usecase.WithStrategy(grounding),
				usecase.WithEmbedder(embedder),
			)

			uc := usecase.New(repo, arxivClient, ucOpts...)

			if jwtSecret != "" {
				uc.Auth.SetJWTSecret([]byte(jwtSecret))
				logging.Default().Info("JWT bearer authentication enabled")
			}
			if noAuthn {
				uc.Auth.SetNoAuthn(true)
				logging.Default().Warn("Running in no-authn mode (development only)")
			}

			httpOpts := []httpctrl.Options{
				httpctrl.WithAuth(uc.Auth),
			}
			if len(origins) > 0 {
				httpOpts = append(httpOpts, httpctrl.WithAllowedOrigins(origins))
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
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
