// Package config loads reconcile settings from viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/spice-reconcile/internal/common"
	"github.com/Veraticus/spice-reconcile/internal/protocol"
	"github.com/spf13/viper"
)

// Config keys.
const (
	KeyServerAddress  = "server.address"
	KeyCodec          = "transport.codec"
	KeyDatabasePath   = "database.path"
	KeyJournalEnabled = "journal.enabled"
	KeyKnownAccounts  = "accounts.known"
	KeyLogLevel       = "logging.level"
	KeyLogFormat      = "logging.format"
	KeyLogFile        = "logging.file"
	KeyTheme          = "ui.theme"
)

// Defaults.
const (
	DefaultServerAddress = "localhost:8101"
	DefaultDatabasePath  = "$HOME/.local/share/spice-reconcile/journal.db"
	DefaultLogFile       = "$HOME/.local/share/spice-reconcile/reconcile.log"
)

// Config is the resolved configuration.
type Config struct {
	ServerAddress  string
	Codec          string
	DatabasePath   string
	LogLevel       string
	LogFormat      string
	LogFile        string
	Theme          string
	KnownAccounts  []string
	JournalEnabled bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyServerAddress, DefaultServerAddress)
	v.SetDefault(KeyCodec, protocol.CodecJSON)
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyJournalEnabled, true)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyLogFile, DefaultLogFile)
	v.SetDefault(KeyTheme, "default")
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		ServerAddress:  strings.TrimSpace(v.GetString(KeyServerAddress)),
		Codec:          v.GetString(KeyCodec),
		DatabasePath:   ExpandPath(v.GetString(KeyDatabasePath)),
		JournalEnabled: v.GetBool(KeyJournalEnabled),
		KnownAccounts:  v.GetStringSlice(KeyKnownAccounts),
		LogLevel:       v.GetString(KeyLogLevel),
		LogFormat:      v.GetString(KeyLogFormat),
		LogFile:        ExpandPath(v.GetString(KeyLogFile)),
		Theme:          v.GetString(KeyTheme),
	}

	if cfg.ServerAddress == "" {
		return Config{}, fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyServerAddress)
	}
	if _, err := protocol.NewCodec(cfg.Codec); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", common.ErrInvalidConfig, KeyCodec, err)
	}
	if _, err := common.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	if cfg.LogFormat != "console" && cfg.LogFormat != "json" {
		return Config{}, fmt.Errorf("%w: %s %q", common.ErrInvalidConfig, KeyLogFormat, cfg.LogFormat)
	}
	if cfg.JournalEnabled && cfg.DatabasePath == "" {
		return Config{}, fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyDatabasePath)
	}
	return cfg, nil
}

// ExpandPath expands a leading ~ and $VAR references in a file path.
func ExpandPath(path string) string {
	switch {
	case path == "":
		return path
	case path == "~" || strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return os.ExpandEnv(path)
}
