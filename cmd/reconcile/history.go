package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/spice-reconcile/internal/storage"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

const (
	historyTimeFormat = "2006-01-02 15:04:05"
	maxPayloadWidth   = 60
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent review sessions and the messages they sent",
		RunE:  runHistory,
	}

	cmd.Flags().Int("limit", 20, "number of sessions and messages to show")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	ctx := cmd.Context()

	store, err := initStorage(ctx, appConfig)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	sessions, err := store.SessionSummaries(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}
	messages, err := store.RecentMessages(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to load messages: %w", err)
	}

	return writeHistory(cmd.OutOrStdout(), time.Now(), sessions, messages)
}

func writeHistory(out io.Writer, now time.Time, sessions []storage.SessionSummary, messages []storage.OutboundMessage) error {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

	if len(sessions) == 0 {
		_, err := fmt.Fprintln(out, "No review sessions recorded yet.")
		return err
	}

	if _, err := fmt.Fprintln(out, headerStyle.Render("Sessions")); err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		"ID", "Server", "Started", "Generations", "Last Gen", "Messages"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, s := range sessions {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s (%s)\t%d\t%s\t%d\n",
			shortID(s.ID),
			s.Server,
			s.StartedAt.Local().Format(historyTimeFormat),
			since(now, s.StartedAt),
			s.Generations,
			optionalInt(s.LastGeneration),
			s.Messages); err != nil {
			return fmt.Errorf("failed to write session: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		slog.Error("failed to flush table writer", "error", err)
		return err
	}

	if len(messages) == 0 {
		return nil
	}

	if _, err := fmt.Fprintln(out); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(out, headerStyle.Render("Recent messages")); err != nil {
		return err
	}
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		"Sent", "Session", "Type", "Gen", "Payload"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, m := range messages {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			m.SentAt.Local().Format(historyTimeFormat),
			shortID(m.SessionID),
			m.Type,
			optionalInt(m.Generation),
			truncate(m.Payload, maxPayloadWidth)); err != nil {
			return fmt.Errorf("failed to write message: %w", err)
		}
	}
	return w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func truncate(s string, width int) string {
	s = strings.TrimSpace(s)
	if len([]rune(s)) <= width {
		return s
	}
	return string([]rune(s)[:width-1]) + "…"
}

// since formats how long before now t was.
func since(now, t time.Time) string {
	d := now.Sub(t).Round(time.Minute)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
