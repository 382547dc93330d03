package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kimhsiao/daycanvas/internal/lunar"
	"github.com/kimhsiao/daycanvas/internal/models"
)

func newMoonCmd() *cobra.Command {
	var svg bool
	var size float64
	var dark bool
	cmd := &cobra.Command{
		Use:   "moon [DATE]",
		Short: "Print the moon phase of a date (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := time.Now()
			if len(args) == 1 {
				var err error
				if t, err = time.Parse(models.DateLayout, args[0]); err != nil {
					return fmt.Errorf("invalid date %q: want YYYY-MM-DD", args[0])
				}
			}
			phase := lunar.Phase(t)
			if !svg {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s %.3f\n", t.Format(models.DateLayout), lunar.Name(phase), phase)
				return err
			}

			// Same palette as the day header: high contrast against the theme background.
			shadow, lit, outline := "#e5e5e5", "#1a1a1a", "#000000"
			if dark {
				shadow, lit, outline = "#333333", "#ffffff", "#ffffff"
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), lunar.ShapeOf(phase, size).SVG(shadow, lit, outline))
			return err
		},
	}
	cmd.Flags().BoolVar(&svg, "svg", false, "Print an SVG icon instead of the phase name")
	cmd.Flags().Float64Var(&size, "size", 80, "SVG icon size")
	cmd.Flags().BoolVar(&dark, "dark", false, "Use the dark theme palette")
	return cmd
}
