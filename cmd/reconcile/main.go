package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Veraticus/spice-reconcile/internal/common"
	"github.com/Veraticus/spice-reconcile/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// annotationTUI marks commands that take over the terminal.
const annotationTUI = "tui"

var (
	cfgFile   string
	version   = "dev"
	appConfig config.Config
	logFile   io.Closer
	rootCmd   = &cobra.Command{
		Use:   "reconcile",
		Short: "🌶️  Review and accept ledger import candidates",
		Long: `reconcile connects to a ledger matching server and lets you review the
candidate transactions it proposes: fix placeholder accounts, edit tags, links
and narration, and accept, skip or defer each one.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/spice-reconcile/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("log-file", "", "log file used while the review screen is open")

	_ = viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyLogFormat, rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag(config.KeyLogFile, rootCmd.PersistentFlags().Lookup("log-file"))

	rootCmd.AddCommand(reviewCmd())
	rootCmd.AddCommand(demoCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel()
	if logFile != nil {
		_ = logFile.Close()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(cmd *cobra.Command, _ []string) error {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		viper.AddConfigPath(fmt.Sprintf("%s/.config/spice-reconcile", home))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// RECONCILE_SERVER_ADDRESS overrides server.address
	viper.SetEnvPrefix("RECONCILE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return common.NewUserError("invalid configuration", err)
	}
	appConfig = cfg

	if err := setupLogging(cmd, cfg); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	return nil
}

func setupLogging(cmd *cobra.Command, cfg config.Config) error {
	level, err := common.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stderr
	if _, ok := cmd.Annotations[annotationTUI]; ok {
		f, err := common.OpenLogFile(cfg.LogFile)
		if err != nil {
			return err
		}
		logFile = f
		w = f
	}

	return common.SetupLogger(w, level, cfg.LogFormat)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "reconcile %s\n", version)
		},
	}
}
