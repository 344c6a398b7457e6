package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/m3rciful/econbot/app"
	corecmd "github.com/m3rciful/econbot/core/cmd"
	coredatabase "github.com/m3rciful/econbot/core/database"
	"github.com/m3rciful/econbot/core/logger"
)

const defaultConfigPath = "config.yaml"

func main() {
	_ = godotenv.Load()

	var configPath string

	root := &cobra.Command{
		Use:           "econbot",
		Short:         "Telegram bot for the economic role-play game",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH)")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if configPath != "" {
			_ = os.Setenv("CONFIG_PATH", configPath)
		}
	}

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run the bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return corecmd.Run(corecmd.Options{
				DefaultConfigPath: defaultConfigPath,
				LoadConfig:        app.LoadConfig,
				Bootstrap:         app.Bootstrap,
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := os.Getenv("CONFIG_PATH")
			if path == "" {
				path = defaultConfigPath
			}
			cfg, err := app.Load(path)
			if err != nil {
				return err
			}
			if err := logger.InitLogger(cfg.CoreConfig()); err != nil {
				return err
			}
			defer func() { _ = logger.Shutdown() }()
			return coredatabase.RunMigrations(cfg.Database)
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
