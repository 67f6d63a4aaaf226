package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/spice-reconcile/internal/common"
	"github.com/Veraticus/spice-reconcile/internal/config"
	"github.com/Veraticus/spice-reconcile/internal/storage"
	"github.com/Veraticus/spice-reconcile/internal/transport"
	"github.com/Veraticus/spice-reconcile/internal/tui"
	"github.com/Veraticus/spice-reconcile/internal/tui/themes"
)

// initStorage opens the journal database and brings its schema up to date.
func initStorage(ctx context.Context, cfg config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// withJournal wraps conn so outbound messages and received generations are
// journaled when journaling is enabled. The returned func releases the store.
func withJournal(ctx context.Context, cfg config.Config, conn transport.Duplex, server string) (transport.Duplex, func(), error) {
	if !cfg.JournalEnabled {
		return conn, func() {}, nil
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return nil, nil, common.NewUserError("could not open the journal database", err)
	}

	sessionID, err := store.StartSession(ctx, server)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to start journal session: %w", err)
	}
	common.LogInfo("Journal session started", common.Fields{
		"session":  sessionID,
		"server":   server,
		"database": store.Path(),
	})

	release := func() {
		if err := store.Close(); err != nil {
			common.LogError(err, "failed to close journal", nil)
		}
	}
	return transport.NewJournalingSender(conn, store, sessionID), release, nil
}

// screenOptions returns the review screen options shared by review and demo.
func screenOptions(cfg config.Config, conn transport.Duplex, server string) []tui.Option {
	return []tui.Option{
		tui.WithConn(conn),
		tui.WithServer(server),
		tui.WithKnownAccounts(cfg.KnownAccounts),
		tui.WithTheme(themes.GetTheme(cfg.Theme)),
		tui.WithPostAccept(func(meta map[string]any) {
			common.LogInfo("Candidate accepted", common.Fields{"meta": meta})
		}),
	}
}
