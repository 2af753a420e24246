// Package cmd provides the command-line interface for sitepress with
// configuration loading from multiple sources.
//
// Configuration precedence, highest first:
//  1. Command-line flags (--config, --port, etc.)
//  2. SITEPRESS_CONFIG_FILE environment variable (custom config file path)
//  3. Individual environment variables (SITEPRESS_SERVER_PORT, etc.)
//  4. Configuration file (.sitepress.yml)
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/sitepress/internal/logging"
)

var (
	cfgFile  string
	logLevel = levelFlag(logging.LevelInfo)
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sitepress",
	Short: "Content-addressed static site builds with watch and live reload",
	Long: `sitepress builds a static site from one HTML entrypoint: every locally
referenced stylesheet, preprocessed stylesheet, script, and image becomes a
content-addressed artifact, references are rewritten to the new names, and the
rewritten HTML is emitted last.

Commands:
  sitepress build index.html      One build, artifacts written to the output dir
  sitepress watch index.html      Rebuild to disk on every contributing-file change
  sitepress serve index.html      Development server with live reload
  sitepress init                  Write a default .sitepress.yml
`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .sitepress.yml, can also use SITEPRESS_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().VarP(&logLevel, "log-level", "l", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "log in JSON format")
	_ = viper.BindPFlag("log-json", rootCmd.PersistentFlags().Lookup("log-json"))
}

// initConfig initializes viper with the documented source precedence.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("SITEPRESS_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".sitepress")
	}

	viper.SetEnvPrefix("SITEPRESS")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing config file is fine; defaults and environment cover it.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the process logger from the root flags. It is constructed
// once per command invocation and threaded into every component.
func newLogger() logging.Logger {
	format := "text"
	if viper.GetBool("log-json") {
		format = "json"
	}
	return logging.NewLogger(&logging.Config{
		Level:  logging.LogLevel(logLevel),
		Format: format,
		Output: os.Stderr,
	})
}
