package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ai-blog-writer/internal/api"
	"github.com/ai-blog-writer/internal/metrics"
	"github.com/ai-blog-writer/internal/provider"
	"github.com/ai-blog-writer/internal/repository"
	"github.com/ai-blog-writer/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx, ctx.skipMigrations)
		},
	}
	addServeFlags(cmd, ctx)
	return cmd
}

// addServeFlags registers the serve flags on cmd. The root command runs
// serve too, so it carries the same flags.
func addServeFlags(cmd *cobra.Command, ctx *commandContext) {
	cmd.Flags().BoolVar(&ctx.skipMigrations, "skip-migrations", false, "Do not apply pending migrations on start")
}

func runServe(parent context.Context, cctx *commandContext, skipMigrations bool) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := cctx.ensureConfig()
	if err != nil {
		return err
	}
	log := cctx.log
	log.Info().Msg("Starting AI blog writer server...")

	db, err := cctx.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if !skipMigrations {
		if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	keys := make(map[string]bool)
	for name, pc := range cfg.Providers.All() {
		keys[name] = pc.APIKey != ""
	}
	log.Info().Interface("api_keys", keys).Str("default_provider", cfg.Providers.DefaultProvider).Msg("Provider configuration loaded")

	client := provider.NewFromConfig(&cfg.Providers,
		provider.WithLogger(log),
		provider.WithObserver(metrics.ProviderObserver{}),
	)
	services := service.NewServices(repository.New(db), client, cfg, log)

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      api.NewRouter(services, cfg, log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("Server exited gracefully")
	return nil
}
