package tui

import (
	"github.com/Veraticus/spice-reconcile/internal/transport"
	"github.com/Veraticus/spice-reconcile/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme         themes.Theme
	Conn          transport.Duplex
	OnPostAccept  func(meta map[string]any)
	Server        string
	KnownAccounts []string
	Width         int
	Height        int
	MaxSuggested  int
	MouseSupport  bool
	ShowHelp      bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:        themes.Default,
		Width:        100,
		Height:       30,
		MaxSuggested: 5,
		MouseSupport: true,
		ShowHelp:     false,
	}
}

// WithConn sets the connection candidates arrive on and messages leave by.
func WithConn(conn transport.Duplex) Option {
	return func(c *Config) {
		c.Conn = conn
	}
}

// WithServer names the importer in the status line.
func WithServer(addr string) Option {
	return func(c *Config) {
		c.Server = addr
	}
}

// WithKnownAccounts seeds account suggestions.
func WithKnownAccounts(accounts []string) Option {
	return func(c *Config) {
		c.KnownAccounts = accounts
	}
}

// WithPostAccept registers a callback for the metadata of accepted entries.
func WithPostAccept(fn func(meta map[string]any)) Option {
	return func(c *Config) {
		c.OnPostAccept = fn
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithMouse toggles mouse support.
func WithMouse(enabled bool) Option {
	return func(c *Config) {
		c.MouseSupport = enabled
	}
}
