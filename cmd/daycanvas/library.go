package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kimhsiao/daycanvas/internal/library"
)

func newLibraryCmd(opts *rootOptions) *cobra.Command {
	libraryCmd := &cobra.Command{Use: "library", Short: "Reusable media library"}

	libraryCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List library items, oldest first",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			items, err := a.library.List(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tBYTES\tADDED")
			for _, it := range items {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", it.ID, it.Kind, library.PayloadSize(it.Data),
					it.CreatedAtTime().UTC().Format("2006-01-02 15:04:05"))
			}
			return tw.Flush()
		}),
	})

	var mimeType string
	addCmd := &cobra.Command{
		Use:   "add FILE",
		Short: "Upload an image or video file",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			item, err := a.library.Upload(ctx, raw, mimeType)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), item.ID)
			return nil
		}),
	}
	addCmd.Flags().StringVar(&mimeType, "type", "", "MIME type (sniffed from the content when empty)")
	libraryCmd.AddCommand(addCmd)

	libraryCmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Remove a library item",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			return a.library.Delete(ctx, args[0])
		}),
	})

	return libraryCmd
}
