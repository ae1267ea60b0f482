package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hienao/openlist-strm/internal/buildinfo"
	"github.com/hienao/openlist-strm/internal/logging"
)

// global flags
var (
	appConfig string
)

const (
	ServerKey      = "server"
	EnvironmentKey = "environment"
	SessionPathKey = "session.path"
)

var rootCmd = &cobra.Command{
	Use:   "openlist-strm",
	Short: fmt.Sprintf("openlist-strm client (version: %s, commit: %s)", buildinfo.Version, buildinfo.CommitHash),
	Long: `openlist-strm turns an OpenList directory into a STRM media library.
This client manages the session with the backend (sign-in, first-run
registration, token refresh) and runs the web gate that guards the UI.`,
	Version: buildinfo.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, configErr := initConfig()
		logging.Init(nil)
		if configErr != nil { // handle error after logging is initialized
			return configErr
		}
		if configPath != "" {
			log.Debug().Msgf("using config file: %s", configPath)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var quiet BeQuietError
		if !errors.As(err, &quiet) {
			log.Error().Err(err).Msg("execution failed")
		}
		os.Exit(1)
	}
}

func init() {
	// setup pre-flag logger
	logging.InitDefault()

	rootCmd.PersistentFlags().StringVar(&appConfig, "config", "",
		"Configuration file (default is $HOME/.openlist-strm.yaml)")

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	_ = viper.BindPFlag(logging.LevelKey, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().String("log-format", "console", "Log format (console, json)")
	_ = viper.BindPFlag(logging.FormatKey, rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.PersistentFlags().Bool("no-color", false, "Disable color output")
	_ = viper.BindPFlag(logging.NoColorKey, rootCmd.PersistentFlags().Lookup("no-color"))

	rootCmd.PersistentFlags().String("server", "", "API base address of the backend (overrides the configured one)")
	_ = viper.BindPFlag(ServerKey, rootCmd.PersistentFlags().Lookup("server"))

	rootCmd.PersistentFlags().String("environment", "", "Runtime environment (development, production)")
	_ = viper.BindPFlag(EnvironmentKey, rootCmd.PersistentFlags().Lookup("environment"))

	viper.SetEnvPrefix("OLSTRM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))

	viper.AutomaticEnv()

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

func initConfig() (string, error) {
	// reads in config file and ENV variables if set.
	if appConfig != "" {
		viper.SetConfigFile(appConfig)
	} else {
		// search order: current dir, $HOME, XDG config
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}

		configDir, err := os.UserConfigDir()
		if err == nil {
			viper.AddConfigPath(configDir + "/openlist-strm")
		}

		viper.SetConfigType("yaml")
		viper.SetConfigName(".openlist-strm")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		var notFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundError) {
			return "", err
		}
	} else {
		return viper.ConfigFileUsed(), nil
	}

	return "", nil
}
