// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the scribe CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/scribe/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// settingsKeys lists every types.Settings mapstructure key, bound to its
// SCRIBE_* environment variable during initConfig.
var settingsKeys = []string{
	"api_key",
	"model",
	"prompt",
	"variables",
	"note_template",
	"filename_template",
	"output_folder",
	"workers",
	"show_progress",
	"debug",
	"move_after_processing",
	"processed_folder",
	"default_tags",
	"custom_variables",
	"auto_open",
	"history_path",
}

// rootCmd is the base command for the scribe CLI.
var rootCmd = &cobra.Command{
	Use:   "scribe",
	Short: "Turn handwritten notes into Markdown notes",
	Long: `scribe transcribes handwritten-note images and PDFs into Markdown by
calling an AI vision backend and rendering the results through user
templates. Point it at files or folders; each input becomes one note.

Configuration comes from scribe.yaml, SCRIBE_* environment variables, a
local .env, or a .secrets/ directory holding the gemini-api-key file.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A local .env may carry SCRIBE_API_KEY; missing files are fine.
		_ = godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s

		level := zerolog.InfoLevel
		if viper.GetBool("debug") {
			level = zerolog.DebugLevel
		}
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./scribe.yaml or ~/.config/scribe/config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("scribe")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "scribe"))
		}
	}

	viper.SetEnvPrefix("SCRIBE")
	viper.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so a key
	// set purely through the environment (SCRIBE_API_KEY and friends) would
	// never survive Unmarshal. Explicit bindings make every settings key
	// visible regardless of whether a config file mentions it.
	for _, key := range settingsKeys {
		viper.BindEnv(key)
	}

	// Absence and false are indistinguishable after unmarshal, so the one
	// default-true toggle lives here.
	viper.SetDefault("show_progress", true)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
