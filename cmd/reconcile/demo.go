package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/spice-reconcile/internal/common"
	"github.com/Veraticus/spice-reconcile/internal/model"
	"github.com/Veraticus/spice-reconcile/internal/protocol"
	"github.com/Veraticus/spice-reconcile/internal/transport"
	"github.com/Veraticus/spice-reconcile/internal/tui"
	"github.com/spf13/cobra"
)

const demoServer = "demo"

func demoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Review candidates from a file with an in-process server",
		Long: `Load a candidate set from a JSON file and review it against an in-process
server that applies your changes, removes accepted candidates and sends a new
generation after each one. Nothing is written anywhere except the journal.`,
		Example:     "  reconcile demo --file testdata/candidates.json",
		Annotations: map[string]string{annotationTUI: "true"},
		RunE:        runDemo,
	}

	cmd.Flags().StringP("file", "f", "", "candidate set JSON file")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runDemo(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("file")
	cfg := appConfig

	set, err := loadCandidateSet(path)
	if err != nil {
		return common.NewUserError(fmt.Sprintf("could not load %s", path), err)
	}

	codec, err := protocol.NewCodec(cfg.Codec)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	client, server := transport.Pipe(codec)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- transport.NewLoopback(set).Serve(ctx, server)
	}()

	duplex, release, err := withJournal(ctx, cfg, client, demoServer)
	if err != nil {
		_ = client.Close()
		return err
	}
	defer release()

	runErr := tui.Run(ctx, screenOptions(cfg, duplex, demoServer)...)

	cancel()
	_ = client.Close()
	_ = server.Close()
	if err := <-serveErr; err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, common.ErrConnectionClosed) {
		common.LogError(err, "demo server stopped", nil)
	}
	return runErr
}

// loadCandidateSet reads and validates a candidate set file.
func loadCandidateSet(path string) (model.CandidateSet, error) {
	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 -- path is a user-supplied flag
	if err != nil {
		return model.CandidateSet{}, fmt.Errorf("failed to read candidate file: %w", err)
	}

	var set model.CandidateSet
	if err := json.Unmarshal(data, &set); err != nil {
		return model.CandidateSet{}, fmt.Errorf("%w: %v", common.ErrInvalidCandidateSet, err)
	}
	if err := set.Validate(); err != nil {
		return model.CandidateSet{}, fmt.Errorf("%w: %w", common.ErrInvalidCandidateSet, err)
	}
	return set, nil
}
