package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/rovelle/charbot/internal/transcript"
)

func newTranscriptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcript",
		Short: "Inspect the archived conversation turns",
	}

	cmd.AddCommand(newTranscriptRecentCmd())
	return cmd
}

func newTranscriptRecentCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show the latest archived turns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := transcript.Open(filepath.Join(paths.Data, "transcript.db"), log)
			if err != nil {
				return fmt.Errorf("opening transcript database: %w", err)
			}
			defer db.Close()
			rec := transcript.NewRecorder(db)

			ctx := cmd.Context()
			total, err := rec.Count(ctx)
			if err != nil {
				return err
			}
			events, err := rec.Recent(ctx, limit)
			if err != nil {
				return err
			}

			fmt.Printf("%d turn(s) archived, showing %d\n\n", total, len(events))
			for _, ev := range events {
				fmt.Printf("[%s] %s (%s)\n", ev.At.Local().Format(time.DateTime), ev.SenderName, ev.ConversationID)
				fmt.Printf("  > %s\n", ev.Message)
				fmt.Printf("  < %s\n", ev.Reply)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of turns to show")

	return cmd
}
