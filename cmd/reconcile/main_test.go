package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/spice-reconcile/internal/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogging_TUICommandLogsToFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		logFile = nil
	})

	path := filepath.Join(t.TempDir(), "logs", "reconcile.log")
	cmd := &cobra.Command{Annotations: map[string]string{annotationTUI: "true"}}
	cfg := config.Config{LogLevel: "debug", LogFormat: "json", LogFile: path}

	require.NoError(t, setupLogging(cmd, cfg))
	require.NotNil(t, logFile)
	slog.Debug("generation received", "generation", 3)
	require.NoError(t, logFile.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"generation received"`)
	assert.Contains(t, string(data), `"generation":3`)
}

func TestSetupLogging_Errors(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	cmd := &cobra.Command{}
	assert.Error(t, setupLogging(cmd, config.Config{LogLevel: "loud", LogFormat: "console"}))
	assert.Error(t, setupLogging(cmd, config.Config{LogLevel: "info", LogFormat: "xml"}))
	assert.NoError(t, setupLogging(cmd, config.Config{LogLevel: "warn", LogFormat: "console"}))
}

func TestVersionCmd(t *testing.T) {
	var buf bytes.Buffer
	cmd := versionCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "reconcile dev\n", buf.String())
}

func TestRootCmd_Commands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"review", "demo", "history", "version"} {
		assert.True(t, names[want], want)
	}

	for _, c := range []*cobra.Command{reviewCmd(), demoCmd()} {
		_, ok := c.Annotations[annotationTUI]
		assert.True(t, ok, "%s owns the terminal", c.Name())
	}
	_, ok := historyCmd().Annotations[annotationTUI]
	assert.False(t, ok)
}
