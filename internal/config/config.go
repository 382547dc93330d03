// Package config loads daycanvas settings from DAYCANVAS_* environment
// variables.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"

	"github.com/kimhsiao/daycanvas/internal/backup"
	"github.com/kimhsiao/daycanvas/internal/drawing"
	"github.com/kimhsiao/daycanvas/internal/logging"
	"github.com/kimhsiao/daycanvas/internal/session"
)

// Prefix is the environment variable prefix, e.g. DAYCANVAS_DATA_DIR.
const Prefix = "DAYCANVAS"

// Config holds the core's runtime settings.
type Config struct {
	DataDir  string `envconfig:"DATA_DIR" default:"./data"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Canvas surface used for headless rendering.
	CanvasWidth  int `envconfig:"CANVAS_WIDTH" default:"1280"`
	CanvasHeight int `envconfig:"CANVAS_HEIGHT" default:"800"`

	MoveThreshold      float64 `envconfig:"MOVE_THRESHOLD" default:"3"`
	ResizeSensitivity  float64 `envconfig:"RESIZE_SENSITIVITY" default:"0.01"`
	StrokeReplayPolicy string  `envconfig:"STROKE_REPLAY_POLICY" default:"absolute"`

	LegacyBlobName string `envconfig:"LEGACY_BLOB_NAME" default:"calendarEvents"`
	MaxVideoBytes  int64  `envconfig:"MAX_VIDEO_BYTES" default:"10485760"`

	// Scheduled backups. An empty BackupDir means <DataDir>/backups.
	BackupDir       string `envconfig:"BACKUP_DIR"`
	BackupInterval  string `envconfig:"BACKUP_INTERVAL" default:"manual"`
	BackupRetention int    `envconfig:"BACKUP_RETENTION" default:"7"`
	BackupPassword  string `envconfig:"BACKUP_PASSWORD"`

	// InMemory replaces the SQLite store with a volatile one.
	InMemory bool `envconfig:"IN_MEMORY" default:"false"`
}

// New creates a Config by parsing the environment and validating it.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logging.Info("Configuration loaded", map[string]interface{}{
		"data_dir":             cfg.DataDir,
		"log_level":            cfg.LogLevel,
		"canvas":               fmt.Sprintf("%dx%d", cfg.CanvasWidth, cfg.CanvasHeight),
		"stroke_replay_policy": cfg.StrokeReplayPolicy,
		"in_memory":            cfg.InMemory,
		"backup_interval":      cfg.BackupInterval,
	})
	return &cfg, nil
}

// NewForTesting returns the defaults with an in-memory store.
func NewForTesting() *Config {
	return &Config{
		DataDir:            "",
		LogLevel:           "debug",
		CanvasWidth:        1280,
		CanvasHeight:       800,
		MoveThreshold:      session.DefaultConfig().MoveThreshold,
		ResizeSensitivity:  session.DefaultConfig().ResizeSensitivity,
		StrokeReplayPolicy: string(drawing.ReplayAbsolute),
		LegacyBlobName:     "calendarEvents",
		MaxVideoBytes:      10 << 20,
		BackupInterval:     string(backup.IntervalManual),
		BackupRetention:    7,
		InMemory:           true,
	}
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if !c.InMemory && c.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required unless IN_MEMORY is set")
	}
	if c.CanvasWidth <= 0 || c.CanvasHeight <= 0 {
		return fmt.Errorf("canvas size must be positive, got %dx%d", c.CanvasWidth, c.CanvasHeight)
	}
	if c.MoveThreshold < 0 {
		return fmt.Errorf("MOVE_THRESHOLD must not be negative, got %v", c.MoveThreshold)
	}
	if c.ResizeSensitivity <= 0 {
		return fmt.Errorf("RESIZE_SENSITIVITY must be positive, got %v", c.ResizeSensitivity)
	}
	if _, err := drawing.ParseReplayPolicy(c.StrokeReplayPolicy); err != nil {
		return err
	}
	if c.LegacyBlobName == "" {
		return fmt.Errorf("LEGACY_BLOB_NAME must not be empty")
	}
	if c.MaxVideoBytes <= 0 {
		return fmt.Errorf("MAX_VIDEO_BYTES must be positive, got %d", c.MaxVideoBytes)
	}
	if _, err := backup.ParseInterval(c.BackupInterval); err != nil {
		return err
	}
	if c.BackupRetention < 0 {
		return fmt.Errorf("BACKUP_RETENTION must not be negative, got %d", c.BackupRetention)
	}
	if c.BackupPassword != "" {
		if err := backup.ValidatePassword(c.BackupPassword); err != nil {
			return fmt.Errorf("BACKUP_PASSWORD: %w", err)
		}
	}
	return nil
}

// Session returns the interaction settings for session.New.
func (c *Config) Session() session.Config {
	policy, _ := drawing.ParseReplayPolicy(c.StrokeReplayPolicy)
	return session.Config{
		MoveThreshold:     c.MoveThreshold,
		ResizeSensitivity: c.ResizeSensitivity,
		ReplayPolicy:      policy,
	}
}

// Backup returns the scheduled backup settings.
func (c *Config) Backup() backup.SchedulerConfig {
	interval, _ := backup.ParseInterval(c.BackupInterval)
	dir := c.BackupDir
	if dir == "" {
		dir = filepath.Join(c.DataDir, "backups")
	}
	return backup.SchedulerConfig{
		Interval:       interval,
		RetentionCount: c.BackupRetention,
		Dir:            dir,
		Password:       c.BackupPassword,
	}
}

// Level returns the configured log level.
func (c *Config) Level() logging.LogLevel {
	return logging.ParseLevel(c.LogLevel)
}
