// Package cfg provides configuration and command-line interface setup for
// Grabarr.
package cfg

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"grabarr/internal/domain/keys"
)

var rootCmd = &cobra.Command{
	Use:   "grabarr",
	Short: "Grabarr is a media download server with live progress reporting.",
	RunE: func(cmd *cobra.Command, args []string) error {
		viper.Set("execute", true)
		return nil
	},
}

// InitCommands initializes the root command and its flags.
func InitCommands() error {
	viper.AutomaticEnv()
	viper.SetEnvPrefix("grabarr")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	initProgramFlags()
	return nil
}

// Execute parses the command line.
func Execute() error {
	return rootCmd.Execute()
}

// ShouldRun reports whether the parsed command wants the server started
// (false for help and similar).
func ShouldRun() bool {
	return viper.GetBool("execute")
}

// initProgramFlags initializes the program-level flag settings.
func initProgramFlags() {

	// Listen port
	rootCmd.PersistentFlags().Int(keys.Port, 8280, "Port the HTTP server listens on")
	viper.BindPFlag(keys.Port, rootCmd.PersistentFlags().Lookup(keys.Port))

	// Temp directory for in-flight downloads
	rootCmd.PersistentFlags().String(keys.TempDir, "", "Directory for in-flight download files (defaults to the OS temp dir)")
	viper.BindPFlag(keys.TempDir, rootCmd.PersistentFlags().Lookup(keys.TempDir))

	// Downloader binary
	rootCmd.PersistentFlags().String(keys.YtdlpPath, "yt-dlp", "Path to the yt-dlp binary")
	viper.BindPFlag(keys.YtdlpPath, rootCmd.PersistentFlags().Lookup(keys.YtdlpPath))

	// Browser cookie source
	rootCmd.PersistentFlags().String(keys.CookieSource, "", "Browser to source cookies from (e.g. chrome, firefox); empty disables cookies")
	viper.BindPFlag(keys.CookieSource, rootCmd.PersistentFlags().Lookup(keys.CookieSource))

	// History database
	rootCmd.PersistentFlags().String(keys.DBPath, "grabarr.db", "Path to the download history database")
	viper.BindPFlag(keys.DBPath, rootCmd.PersistentFlags().Lookup(keys.DBPath))

	// Debugging level
	rootCmd.PersistentFlags().IntP(keys.DebugLevel, "d", 0, "Debugging level (0 = info, 1 = debug, 2 = trace)")
	viper.BindPFlag(keys.DebugLevel, rootCmd.PersistentFlags().Lookup(keys.DebugLevel))

	// Log file
	rootCmd.PersistentFlags().String(keys.LogFile, "", "Also write logs to this file")
	viper.BindPFlag(keys.LogFile, rootCmd.PersistentFlags().Lookup(keys.LogFile))
}
