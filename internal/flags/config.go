// Package flags declares the persistent flags shared by every command,
// along with the environment variables and defaults that seed them.
package flags

import (
	"os"
	"strings"

	"github.com/spf13/pflag"
)

const (
	// Env vars
	EnvVarConfigFile = "MCP_DIAGNOSTICS_CONFIG_FILE"
	EnvVarLogPath    = "MCP_DIAGNOSTICS_LOG_PATH"
	EnvVarLogLevel   = "MCP_DIAGNOSTICS_LOG_LEVEL"

	// Defaults
	DefaultConfigFile = "mcp_servers.json"
	DefaultLogPath    = ""
	DefaultLogLevel   = "info"

	// Flag names
	FlagNameConfigFile = "config-file"
	FlagNameLogPath    = "log-path"
	FlagNameLogLevel   = "log-level"
)

// Bound by InitFlags. Flag values override env vars, which override defaults.
var (
	ConfigFile string
	LogPath    string
	LogLevel   string
)

// InitFlags registers the shared flags on the given flag set, seeding each
// from its environment variable when no value has been set yet.
func InitFlags(fs *pflag.FlagSet) {
	initConfigFile(fs)
	initLogger(fs)
}

func initConfigFile(fs *pflag.FlagSet) {
	if ConfigFile == "" {
		ConfigFile = envOrDefault(EnvVarConfigFile, DefaultConfigFile)
	}
	fs.StringVar(&ConfigFile, FlagNameConfigFile, ConfigFile, "path to the server registry file (.json or .toml)")
}

func initLogger(fs *pflag.FlagSet) {
	if LogPath == "" {
		LogPath = envOrDefault(EnvVarLogPath, DefaultLogPath)
	}
	fs.StringVar(&LogPath, FlagNameLogPath, LogPath, "path to generated log file")

	if LogLevel == "" {
		LogLevel = strings.ToLower(envOrDefault(EnvVarLogLevel, DefaultLogLevel))
	}
	fs.StringVar(&LogLevel, FlagNameLogLevel, LogLevel, "log level for mcp-diagnostics logs")
}

func envOrDefault(key string, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
