package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/yz4230/retrigger/internal/config"
)

var rootFlags struct {
	verbose    bool
	configFile string
}

var (
	v         = config.New()
	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "retrigger",
	Short: "Trigger deployments by pushing empty commits to GitHub branches",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		if err := config.ReadFile(v, rootFlags.configFile); err != nil {
			return err
		}
		cfg, err := config.Load(v, log.Logger)
		if err != nil {
			return err
		}
		setupLogger(cfg.Log)
		appConfig = cfg
		return nil
	},
}

func setupLogger(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if rootFlags.verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func bindFlag(key string, cmd *cobra.Command, name string) {
	if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", name, err))
	}
}

func bindPersistentFlag(key, name string) {
	if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(name)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", name, err))
	}
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&rootFlags.configFile, "config", "c", "", "Config file (default ./retrigger.yaml)")
	rootCmd.PersistentFlags().String("log-format", "console", "Log format: console or json")
	rootCmd.PersistentFlags().String("dsn", ":memory:", "SQLite database path")
	bindPersistentFlag("log.format", "log-format")
	bindPersistentFlag("database.dsn", "dsn")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(triggerCmd)
}
