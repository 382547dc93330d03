package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kimhsiao/daycanvas/internal/config"
	"github.com/kimhsiao/daycanvas/internal/daycontent"
	"github.com/kimhsiao/daycanvas/internal/db"
	"github.com/kimhsiao/daycanvas/internal/journal"
	"github.com/kimhsiao/daycanvas/internal/legacy"
	"github.com/kimhsiao/daycanvas/internal/library"
	"github.com/kimhsiao/daycanvas/internal/logging"
	"github.com/kimhsiao/daycanvas/internal/models"
)

// app holds the services one command invocation works with.
type app struct {
	cfg     *config.Config
	store   db.RecordStore
	durable bool // store survives the process
	days    *daycontent.Repository
	library *library.Library
	journal *journal.Journal
}

type rootOptions struct {
	dataDir  string
	inMemory bool
}

func (o *rootOptions) config(cmd *cobra.Command) (*config.Config, error) {
	logging.Init(cmd.ErrOrStderr(), logging.ParseLevel(os.Getenv(config.Prefix+"_LOG_LEVEL")))

	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = o.dataDir
	}
	if cmd.Flags().Changed("in-memory") {
		cfg.InMemory = o.inMemory
	}
	return cfg, cfg.Validate()
}

// openApp opens the record store and runs the one-time legacy import. A
// store that fails to open degrades to memory with a warning. The legacy blob
// is only consumed by a durable store so a volatile run never loses it.
func openApp(ctx context.Context, cfg *config.Config) *app {
	var (
		store   db.RecordStore
		durable bool
	)
	if cfg.InMemory {
		store = db.NewMemoryStore()
	} else {
		// On error OpenStore has already logged and handed back a memory store.
		var err error
		store, err = db.OpenStore(ctx, cfg.DataDir)
		durable = err == nil
	}

	if durable && cfg.DataDir != "" {
		// Failures keep the blob for the next start and are logged by Import.
		_, _ = legacy.Import(ctx, legacy.NewFileBlobSource(cfg.DataDir), store, cfg.LegacyBlobName)
	}

	return &app{
		cfg:     cfg,
		store:   store,
		durable: durable,
		days:    daycontent.NewRepository(store),
		library: library.New(store, cfg.MaxVideoBytes),
		journal: journal.New(store),
	}
}

func (a *app) Close() error {
	return a.store.Close()
}

// withApp adapts a command body that needs the services to cobra's RunE.
func (o *rootOptions) withApp(run func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := o.config(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a := openApp(ctx, cfg)
		defer a.Close()
		return run(ctx, a, cmd, args)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "daycanvas",
		Short:         "Per-day canvas journal: stickers, notes, drawings and events",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Data directory (overrides DAYCANVAS_DATA_DIR)")
	root.PersistentFlags().BoolVar(&opts.inMemory, "in-memory", false, "Use a volatile in-memory store")

	root.AddCommand(
		newDayCmd(opts),
		newLibraryCmd(opts),
		newEventsCmd(opts),
		newMoonCmd(),
		newBackupCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "daycanvas v%s\n", Version)
			return err
		},
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parsePoint reads "x,y".
func parsePoint(s string) (models.Point, error) {
	xs, ys, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return models.Point{}, fmt.Errorf("point %q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return models.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return models.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	return models.Point{X: x, Y: y}, nil
}

// parsePoints reads a ';' or whitespace separated list of "x,y" pairs.
func parsePoints(s string) ([]models.Point, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ' ' || r == '\t' || r == '\n' })
	points := make([]models.Point, 0, len(fields))
	for _, f := range fields {
		p, err := parsePoint(f)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}
