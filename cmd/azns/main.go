package main

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/azero-id/azns-toolkit/configs"
	"github.com/azero-id/azns-toolkit/internal/deploy"
	"github.com/azero-id/azns-toolkit/internal/logger"
	"github.com/azero-id/azns-toolkit/internal/reservation"
	"github.com/azero-id/azns-toolkit/internal/whitelist"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const appName = "azns"

var rootCmd = &cobra.Command{
	Use:          appName,
	Short:        "Deploy and operate the name service contracts",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Initialize(slog.LevelDebug, "json")

		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if execPath, err := os.Executable(); err == nil {
			execDir := filepath.Dir(execPath)
			viper.AddConfigPath(execDir)
		}
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")

		// Flags and embedded defaults cover a missing config file
		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				slog.Debug("no config file found, will rely on flags and defaults")
			} else {
				const errMsg = "error reading config file"
				slog.With("err", err.Error()).Error(errMsg)
				return errors.Join(err, errors.New(errMsg))
			}
		} else {
			slog.With("config_file", viper.ConfigFileUsed()).Debug("config file loaded")
		}

		if err := configs.SetDefaults(viper.GetViper()); err != nil {
			return err
		}
		if err := viper.Unmarshal(&configs.Values); err != nil {
			const errMsg = "unable to decode application config"
			slog.With("err", err.Error()).Error(errMsg)
			return errors.Join(err, errors.New(errMsg))
		}

		logger.Initialize(configs.Values.Log.SlogLevel(), configs.Values.Log.Format)
		slog.With("config", configs.Values).Debug("configuration loaded")

		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-format", "json", "Log format (json or text)")
	pf.String("state-dir", ".azns", "Directory holding the registry state")
	pf.String("journal", ".azns/events.db", "SQLite event journal; empty disables it")

	for key, flag := range map[string]string{
		"log.level":    "log-level",
		"log.format":   "log-format",
		"state.dir":    "state-dir",
		"journal.path": "journal",
	} {
		if err := viper.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

func main() {
	rootCmd.AddCommand(deploy.CMD)
	rootCmd.AddCommand(whitelist.CMD)
	rootCmd.AddCommand(reservation.CMD)

	if err := rootCmd.Execute(); err != nil {
		slog.With("err", err.Error()).Error("failed to execute root command")
		os.Exit(1)
	}
}
