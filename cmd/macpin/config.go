package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Cail-Gainey/MacPin/internal/config"
	"github.com/Cail-Gainey/MacPin/internal/logging"
)

// bindViper wires a command's flags into a viper instance that reads
// settings.json from the data directory plus MACPIN_* env vars.
//
// Precedence (lowest → highest): defaults → settings.json → MACPIN_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	configFlag, _ := cmd.Flags().GetString("config")
	dataDirFlag, _ := cmd.Flags().GetString("data-dir")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName("settings")
		v.SetConfigType("json")
		dir := dataDirFlag
		if dir == "" {
			dir = config.DefaultDataDir()
		}
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing settings.json is fine; a malformed one is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("settings: %w", err)
		}
	}

	v.SetEnvPrefix("MACPIN")
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	// --data-dir feeds the same key settings.json spells dataDir.
	if f := cmd.Flags().Lookup("data-dir"); f != nil {
		if err := v.BindPFlag("dataDir", f); err != nil {
			return fmt.Errorf("binding flags: %w", err)
		}
	}
	return nil
}

// loadSettings decodes settings.json (via viper) and lets explicitly set
// flags win over the file. Flag defaults must not shadow file values, hence
// the Changed checks.
func loadSettings(cmd *cobra.Command, v *viper.Viper) (config.Settings, error) {
	s, err := config.FromViper(v)
	if err != nil {
		return config.Settings{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("max-items") {
		n, err := config.ParseLimit(v.GetString("max-items"))
		if err != nil {
			return config.Settings{}, err
		}
		s.MaxItems = n
	}
	if flags.Changed("poll-interval") {
		s.PollInterval = v.GetDuration("poll-interval")
	}
	if flags.Changed("gc-interval") {
		s.GCInterval = v.GetDuration("gc-interval")
	}
	return s, nil
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-background", false, "run interactively: tinter logs + debug level")
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "", "log level: debug|info|warn|error (default: info for service, debug for interactive)")
}

// addDataFlags adds the flags shared by every command that touches the data
// directory.
func addDataFlags(cmd *cobra.Command) {
	cmd.Flags().String("data-dir", "", "data directory (default ~/Library/Application Support/MacPin)")
	cmd.Flags().String("config", "", "path to settings file (overrides auto-discovery)")
}

// setupLogging reads logging flags from viper and configures slog.
func setupLogging(v *viper.Viper) {
	interactive := v.GetBool("no-background") || logging.IsTTY(os.Stderr)
	resolveLogging(interactive, v.GetString("log-format"), v.GetString("log-level"))
}
