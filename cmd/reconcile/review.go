package main

import (
	"fmt"

	"github.com/Veraticus/spice-reconcile/internal/common"
	"github.com/Veraticus/spice-reconcile/internal/config"
	"github.com/Veraticus/spice-reconcile/internal/protocol"
	"github.com/Veraticus/spice-reconcile/internal/transport"
	"github.com/Veraticus/spice-reconcile/internal/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review candidates from a matching server",
		Long: `Connect to a matching server and review the candidates it proposes.

The server pushes a new generation of candidates after every change; the
screen always shows the latest one.`,
		Annotations: map[string]string{annotationTUI: "true"},
		RunE:        runReview,
	}

	cmd.Flags().String("server", "", "server address (host:port)")
	cmd.Flags().String("codec", "", "wire codec (json, cbor)")

	_ = viper.BindPFlag(config.KeyServerAddress, cmd.Flags().Lookup("server"))
	_ = viper.BindPFlag(config.KeyCodec, cmd.Flags().Lookup("codec"))

	return cmd
}

func runReview(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := appConfig

	codec, err := protocol.NewCodec(cfg.Codec)
	if err != nil {
		return err
	}

	common.LogInfo("Connecting to server", common.Fields{
		"server": cfg.ServerAddress,
		"codec":  codec.Name(),
	})
	conn, err := transport.Dial(ctx, cfg.ServerAddress, codec)
	if err != nil {
		return common.NewUserError(fmt.Sprintf("could not connect to %s", cfg.ServerAddress), err)
	}
	defer func() { _ = conn.Close() }()

	duplex, release, err := withJournal(ctx, cfg, conn, cfg.ServerAddress)
	if err != nil {
		return err
	}
	defer release()

	return tui.Run(ctx, screenOptions(cfg, duplex, cfg.ServerAddress)...)
}
