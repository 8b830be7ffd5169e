package main

import (
	"fmt"
	"sync"

	"github.com/ai-blog-writer/internal/config"
	"github.com/ai-blog-writer/internal/database"
	"github.com/ai-blog-writer/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type commandContext struct {
	configOnce sync.Once
	config     *config.Config
	configErr  error
	log        zerolog.Logger

	skipMigrations bool
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "blogwriter",
		Short:         "AI blog writer backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
	}

	serveCmd := newServeCommand(ctx)
	rootCmd.RunE = serveCmd.RunE
	addServeFlags(rootCmd, ctx)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newSchedulesCommand(ctx))
	rootCmd.AddCommand(newCheckKeysCommand(ctx))

	return rootCmd
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			c.configErr = fmt.Errorf("load configuration: %w", err)
			return
		}
		c.config = cfg
		c.log = logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	})
	return c.config, c.configErr
}

// openDB connects to Postgres; the caller closes the handle
func (c *commandContext) openDB() (*database.DB, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	db, err := database.New(&cfg.Database, c.log)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}
