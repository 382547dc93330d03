package main

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kimhsiao/daycanvas/internal/journal"
	"github.com/kimhsiao/daycanvas/internal/legacy"
	"github.com/kimhsiao/daycanvas/internal/models"
)

func newEventsCmd(opts *rootOptions) *cobra.Command {
	eventsCmd := &cobra.Command{Use: "events", Short: "Journal events and entries"}

	var date string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List events, optionally for one date",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			var events []models.JournalEvent
			var err error
			if date != "" {
				events, err = a.journal.ForDate(ctx, date)
			} else {
				events, err = a.journal.All(ctx)
			}
			if err != nil {
				return err
			}
			sort.SliceStable(events, func(i, j int) bool { return events[i].Date < events[j].Date })

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tTYPE\tCOLOR\tTITLE\tID")
			for _, e := range events {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Date, journal.Label(e.EventType), journal.Color(e.EventType), e.Title, e.ID)
			}
			if date != "" {
				entries, err := a.journal.EntriesForDate(ctx, date)
				if err != nil {
					return err
				}
				for _, n := range entries {
					fmt.Fprintf(tw, "%s\tentry %s\t\t%s\t%s\n", n.Date, n.Time, n.Content, n.ID)
				}
			}
			return tw.Flush()
		}),
	}
	listCmd.Flags().StringVar(&date, "date", "", "Only this date (YYYY-MM-DD)")
	eventsCmd.AddCommand(listCmd)

	var eventType, title, description string
	addCmd := &cobra.Command{
		Use:   "add DATE",
		Short: "Record an event",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			event := models.JournalEvent{
				EventType: models.EventType(eventType),
				Title:     title,
				Date:      args[0],
			}
			if description != "" {
				event.Blocks = []models.ContentBlock{{ID: journal.NewEventID(), Type: models.BlockText, Content: description}}
			}
			e, err := a.journal.Save(ctx, event)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), e.ID)
			return nil
		}),
	}
	addCmd.Flags().StringVar(&eventType, "type", string(models.EventIDK), "Emotion type")
	addCmd.Flags().StringVar(&title, "title", "", "Title")
	addCmd.Flags().StringVar(&description, "description", "", "Description, stored as a text block")
	eventsCmd.AddCommand(addCmd)

	eventsCmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			return a.journal.Delete(ctx, args[0])
		}),
	})

	var content string
	noteCmd := &cobra.Command{
		Use:   "note DATE",
		Short: "Add a free-text journal entry",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			e, err := a.journal.SaveEntry(ctx, models.JournalEntry{Date: args[0], Content: content})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), e.ID)
			return nil
		}),
	}
	noteCmd.Flags().StringVar(&content, "text", "", "Entry text")
	eventsCmd.AddCommand(noteCmd)

	var dir string
	importCmd := &cobra.Command{
		Use:   "import-legacy",
		Short: "Import events from a legacy blob and remove it",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			if !a.durable {
				return fmt.Errorf("legacy import needs the on-disk store, the blob was left in place")
			}
			src := dir
			if src == "" {
				src = a.cfg.DataDir
			}
			n, err := legacy.Import(ctx, legacy.NewFileBlobSource(src), a.store, a.cfg.LegacyBlobName)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d events\n", n)
			return nil
		}),
	}
	importCmd.Flags().StringVar(&dir, "dir", "", "Directory holding the legacy blob (default: data dir)")
	eventsCmd.AddCommand(importCmd)

	return eventsCmd
}
