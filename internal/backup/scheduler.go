package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kimhsiao/daycanvas/internal/db"
	apperrors "github.com/kimhsiao/daycanvas/internal/errors"
	"github.com/kimhsiao/daycanvas/internal/logging"
)

// ArchiveExt is the file extension of scheduled archives.
const ArchiveExt = ".dcbak"

// Interval defines the scheduling frequency.
type Interval string

const (
	IntervalManual  Interval = "manual"
	IntervalDaily   Interval = "daily"
	IntervalWeekly  Interval = "weekly"
	IntervalMonthly Interval = "monthly"
)

// SchedulerConfig holds the scheduler configuration.
type SchedulerConfig struct {
	Interval       Interval
	Every          time.Duration // overrides Interval when positive
	RetentionCount int           // archives to keep, 0 keeps all
	Dir            string
	Password       string
}

// Scheduler exports a store to Dir periodically and prunes old archives.
type Scheduler struct {
	store  db.RecordStore
	config SchedulerConfig
	now    func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	done    chan struct{}
}

// NewScheduler creates a scheduler. An empty Dir means "backups".
func NewScheduler(store db.RecordStore, config SchedulerConfig) *Scheduler {
	if config.Dir == "" {
		config.Dir = "backups"
	}
	if config.RetentionCount < 0 {
		config.RetentionCount = 0
	}
	return &Scheduler{store: store, config: config, now: time.Now}
}

// ParseInterval validates an interval name. Empty means manual.
func ParseInterval(s string) (Interval, error) {
	switch i := Interval(strings.ToLower(strings.TrimSpace(s))); i {
	case "":
		return IntervalManual, nil
	case IntervalManual, IntervalDaily, IntervalWeekly, IntervalMonthly:
		return i, nil
	default:
		return "", fmt.Errorf("unknown backup interval %q", s)
	}
}

func (s *Scheduler) period() (time.Duration, error) {
	if s.config.Every > 0 {
		return s.config.Every, nil
	}
	switch s.config.Interval {
	case IntervalDaily:
		return 24 * time.Hour, nil
	case IntervalWeekly:
		return 7 * 24 * time.Hour, nil
	case IntervalMonthly:
		return 30 * 24 * time.Hour, nil
	case IntervalManual, "":
		return 0, nil
	default:
		return 0, fmt.Errorf("unknown interval: %s", s.config.Interval)
	}
}

// Start runs one export immediately and then one per period until Stop or
// ctx is done. In manual mode it does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	period, err := s.period()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInvalid, "invalid backup interval", err)
	}
	if period == 0 {
		logging.Info("Backup scheduler in manual mode", nil)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return apperrors.New(apperrors.ErrInvalid, "backup scheduler already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})

	logging.Info("Backup scheduler started", map[string]interface{}{
		"period":          period.String(),
		"retention_count": s.config.RetentionCount,
		"dir":             s.config.Dir,
	})
	go s.loop(ctx, period, s.stopCh, s.done)
	return nil
}

func (s *Scheduler) loop(ctx context.Context, period time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(ctx); err != nil {
			logging.Error("Scheduled backup failed", err)
		}
		select {
		case <-ticker.C:
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends the schedule and waits for a run in progress to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	done := s.done
	s.mu.Unlock()
	<-done
}

// RunOnce writes one archive and applies the retention policy. It returns
// the archive path.
func (s *Scheduler) RunOnce(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.config.Dir, 0755); err != nil {
		return "", apperrors.Wrap(apperrors.ErrExportFailed, "failed to create backup directory", err)
	}

	now := s.now()
	name := fmt.Sprintf("daycanvas_%s_%03d%s", now.Format("20060102_150405"), now.Nanosecond()/int(time.Millisecond), ArchiveExt)
	path := filepath.Join(s.config.Dir, name)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrExportFailed, "failed to create archive", err)
	}
	var opts []Option
	if s.config.Password != "" {
		opts = append(opts, WithPassword(s.config.Password))
	}
	res, err := Export(ctx, s.store, f, opts...)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = apperrors.Wrap(apperrors.ErrExportFailed, "failed to close archive", cerr)
	}
	if err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", apperrors.Wrap(apperrors.ErrExportFailed, "failed to finalise archive", err)
	}

	logging.Info("Scheduled backup written", map[string]interface{}{
		"file":       path,
		"size_bytes": res.SizeBytes,
	})

	if s.config.RetentionCount > 0 {
		if err := s.applyRetention(); err != nil {
			logging.Error("Backup retention failed", err, map[string]interface{}{
				"dir": s.config.Dir,
			})
		}
	}
	return path, nil
}

// applyRetention removes the oldest archives beyond RetentionCount. Archive
// names sort chronologically.
func (s *Scheduler) applyRetention() error {
	archives, err := ListArchives(s.config.Dir)
	if err != nil {
		return err
	}
	if len(archives) <= s.config.RetentionCount {
		return nil
	}
	for _, path := range archives[:len(archives)-s.config.RetentionCount] {
		if err := os.Remove(path); err != nil {
			logging.Warn("Failed to delete old backup", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
			continue
		}
		logging.Debug("Deleted old backup", map[string]interface{}{"path": path})
	}
	return nil
}

// ListArchives returns the scheduled archives in dir, oldest first.
func ListArchives(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list archives: %w", err)
	}
	var archives []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ArchiveExt {
			continue
		}
		archives = append(archives, filepath.Join(dir, e.Name()))
	}
	sort.Strings(archives)
	return archives, nil
}
