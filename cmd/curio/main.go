package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/curioverse/curio/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "curio",
	Short:   "Content backend for a 3D virtual museum",
	Long: `Curio serves room, door and item metadata for a 3D virtual
museum front end, and mints read/write URLs for binary media.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var configFiles []string
		if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
			configFiles = append(configFiles, configFile)
		}

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg.Log)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: sqlite, postgres, none (default: sqlite, env: CURIO_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (default: curio.db, env: CURIO_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("public-base", "", "public base URL for media read URLs (env: CURIO_STORAGE_PUBLIC_BASE)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
