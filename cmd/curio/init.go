package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/curioverse/curio/config"
	"github.com/curioverse/curio/database"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Provision the content schema and exit",
	Long: `Connect to the configured database and create the content
tables if they are absent. The server provisions lazily on demand, so
this is only needed to verify connectivity or pre-create the schema for
a restricted database role.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	if cfg.Database.Type == "none" || cfg.Database.Type == "" {
		return fmt.Errorf("no database configured")
	}

	repo, closeDB, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer closeDB()

	if err := repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("provision schema: %w", err)
	}

	slog.Info("schema provisioned", "type", cfg.Database.Type)
	return nil
}
