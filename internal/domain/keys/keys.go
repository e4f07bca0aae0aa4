// Package keys holds the flag and Viper keys used across Grabarr.
package keys

// Terminal keys
const (
	Port         string = "port"
	TempDir      string = "temp-dir"
	YtdlpPath    string = "ytdlp-path"
	CookieSource string = "cookie-source"
	DBPath       string = "db-path"
	DebugLevel   string = "debug"
	LogFile      string = "log-file"
)
