package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kimhsiao/daycanvas/internal/backup"
)

func newBackupCmd(opts *rootOptions) *cobra.Command {
	backupCmd := &cobra.Command{Use: "backup", Short: "Export or restore every collection"}

	var password string
	exportCmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write a backup archive",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			tmp := args[0] + ".tmp"
			f, err := os.Create(tmp)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", tmp, err)
			}
			res, err := backup.Export(ctx, a.store, f, passwordOption(password)...)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				os.Remove(tmp)
				return err
			}
			if err := os.Rename(tmp, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d bytes, checksum %s\n", res.SizeBytes, res.Checksum)
			return nil
		}),
	}
	exportCmd.Flags().StringVar(&password, "password", "", "Encrypt the archive with this password")
	backupCmd.AddCommand(exportCmd)

	var importPassword string
	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Restore a backup archive, overwriting records with the same key",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			res, err := backup.Import(ctx, a.store, f, passwordOption(importPassword)...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d records, skipped %d\n", res.ImportedCount, res.SkippedCount)
			return nil
		}),
	}
	importCmd.Flags().StringVar(&importPassword, "password", "", "Password of an encrypted archive")
	backupCmd.AddCommand(importCmd)

	var inspectPassword string
	inspectCmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Verify an archive and print its manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			m, err := backup.ReadManifest(f, passwordOption(inspectPassword)...)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), m)
		},
	}
	inspectCmd.Flags().StringVar(&inspectPassword, "password", "", "Password of an encrypted archive")
	backupCmd.AddCommand(inspectCmd)

	var runPassword string
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Write a timestamped archive to the backup directory and prune old ones",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			sc := a.cfg.Backup()
			if runPassword != "" {
				sc.Password = runPassword
			}
			path, err := backup.NewScheduler(a.store, sc).RunOnce(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		}),
	}
	runCmd.Flags().StringVar(&runPassword, "password", "", "Encrypt the archive with this password (overrides DAYCANVAS_BACKUP_PASSWORD)")
	backupCmd.AddCommand(runCmd)

	backupCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List archives in the backup directory, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}
			archives, err := backup.ListArchives(cfg.Backup().Dir)
			if err != nil {
				return err
			}
			for _, path := range archives {
				fmt.Fprintln(cmd.OutOrStdout(), filepath.Base(path))
			}
			return nil
		},
	})

	backupCmd.AddCommand(&cobra.Command{
		Use:   "schedule",
		Short: "Run scheduled backups until interrupted",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			sc := a.cfg.Backup()
			if sc.Interval == backup.IntervalManual {
				return fmt.Errorf("DAYCANVAS_BACKUP_INTERVAL is manual, nothing to schedule")
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			s := backup.NewScheduler(a.store, sc)
			if err := s.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			s.Stop()
			return nil
		}),
	})

	return backupCmd
}

func passwordOption(password string) []backup.Option {
	if password == "" {
		return nil
	}
	return []backup.Option{backup.WithPassword(password)}
}
