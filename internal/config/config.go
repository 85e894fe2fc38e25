// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"

	"github.com/javiermolinar/calgrid/internal/dateutil"
	"github.com/javiermolinar/calgrid/internal/layout"
	"github.com/javiermolinar/calgrid/internal/render/theme"
	"github.com/javiermolinar/calgrid/internal/timegrid"
)

// Config holds the application configuration.
type Config struct {
	Grid     GridConfig     `toml:"grid"`
	Schedule ScheduleConfig `toml:"schedule"`
	History  HistoryConfig  `toml:"history"`
	Session  SessionConfig  `toml:"session"`
	UI       UIConfig       `toml:"ui"`
	Log      LogConfig      `toml:"log"`
}

// GridConfig holds the time grid settings.
type GridConfig struct {
	CellMinutes int `toml:"cell_minutes"` // must divide 60
}

// ScheduleConfig holds calendar display settings.
type ScheduleConfig struct {
	DayOpen   string `toml:"day_open"`   // e.g., "08:00"
	DayClose  string `toml:"day_close"`  // e.g., "20:00", "24:00" allowed
	Timezone  string `toml:"timezone"`   // IANA name or "Local"
	WeekStart string `toml:"week_start"` // "sunday" or "monday"
}

// HistoryConfig holds undo/redo settings.
type HistoryConfig struct {
	MaxEntries int `toml:"max_entries"`
}

// SessionConfig holds interactive session settings.
type SessionConfig struct {
	Owner       string `toml:"owner"`        // implicit attendee of created events
	SeedPath    string `toml:"seed_path"`    // JSON or .ics drafts loaded at start
	JournalPath string `toml:"journal_path"` // SQLite command journal
}

// UIConfig holds output settings.
type UIConfig struct {
	Color bool   `toml:"color"`
	Theme string `toml:"theme"` // "mocha", "latte"
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"` // logrus level name
}

// envOverrides lists the environment variables that override file values.
// Empty values leave the file value in place.
type envOverrides struct {
	CellMinutes int    `env:"CALGRID_CELL_MINUTES"`
	DayOpen     string `env:"CALGRID_DAY_OPEN"`
	DayClose    string `env:"CALGRID_DAY_CLOSE"`
	Timezone    string `env:"CALGRID_TIMEZONE"`
	WeekStart   string `env:"CALGRID_WEEK_START"`
	MaxEntries  int    `env:"CALGRID_HISTORY_MAX"`
	Owner       string `env:"CALGRID_OWNER"`
	SeedPath    string `env:"CALGRID_SEED_PATH"`
	JournalPath string `env:"CALGRID_JOURNAL_PATH"`
	Color       string `env:"CALGRID_COLOR"`
	Theme       string `env:"CALGRID_THEME"`
	LogLevel    string `env:"CALGRID_LOG_LEVEL"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Grid: GridConfig{
			CellMinutes: timegrid.DefaultCellMinutes,
		},
		Schedule: ScheduleConfig{
			DayOpen:   "08:00",
			DayClose:  "20:00",
			Timezone:  "Local",
			WeekStart: "sunday",
		},
		History: HistoryConfig{
			MaxEntries: 50,
		},
		Session: SessionConfig{
			Owner:       "user_a",
			JournalPath: ":memory:",
		},
		UI: UIConfig{
			Color: true,
			Theme: theme.DefaultName,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "calgrid", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	// Try to load from file (not an error if it doesn't exist)
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Session.SeedPath = expandPath(cfg.Session.SeedPath)
	cfg.Session.JournalPath = expandPath(cfg.Session.JournalPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}

	if o.CellMinutes != 0 {
		cfg.Grid.CellMinutes = o.CellMinutes
	}
	setIf(&cfg.Schedule.DayOpen, o.DayOpen)
	setIf(&cfg.Schedule.DayClose, o.DayClose)
	setIf(&cfg.Schedule.Timezone, o.Timezone)
	setIf(&cfg.Schedule.WeekStart, o.WeekStart)
	if o.MaxEntries != 0 {
		cfg.History.MaxEntries = o.MaxEntries
	}
	setIf(&cfg.Session.Owner, o.Owner)
	setIf(&cfg.Session.SeedPath, o.SeedPath)
	setIf(&cfg.Session.JournalPath, o.JournalPath)
	if o.Color != "" {
		color, err := strconv.ParseBool(o.Color)
		if err != nil {
			return fmt.Errorf("CALGRID_COLOR: %w", err)
		}
		cfg.UI.Color = color
	}
	setIf(&cfg.UI.Theme, o.Theme)
	setIf(&cfg.Log.Level, o.LogLevel)
	return nil
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	g, err := c.TimeGrid()
	if err != nil {
		return fmt.Errorf("cell_minutes: %w", err)
	}

	w, err := c.Window()
	if err != nil {
		return err
	}
	if !g.AlignedClock(w.Open) {
		return fmt.Errorf("day_open %s is not aligned to %d-minute cells", c.Schedule.DayOpen, g.CellMinutes())
	}
	if !g.AlignedClock(w.Close) {
		return fmt.Errorf("day_close %s is not aligned to %d-minute cells", c.Schedule.DayClose, g.CellMinutes())
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.WeekStart(); err != nil {
		return err
	}
	if c.History.MaxEntries < 1 {
		return errors.New("history max_entries must be at least 1")
	}
	if strings.TrimSpace(c.Session.Owner) == "" {
		return errors.New("session owner must be set")
	}
	if c.Session.JournalPath == "" {
		return errors.New("journal_path must be set")
	}
	if !theme.IsAvailable(c.UI.Theme) {
		return fmt.Errorf("unknown theme %q, available: %s", c.UI.Theme, strings.Join(theme.Available(), ", "))
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// TimeGrid returns the configured grid.
func (c *Config) TimeGrid() (timegrid.Grid, error) {
	return timegrid.New(c.Grid.CellMinutes)
}

// Window returns the configured day window.
func (c *Config) Window() (layout.DayWindow, error) {
	return layout.ParseDayWindow(c.Schedule.DayOpen, c.Schedule.DayClose)
}

// Location returns the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Schedule.Timezone {
	case "", "Local", "local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Schedule.Timezone, err)
	}
	return loc, nil
}

// WeekStart returns the configured first day of the week.
func (c *Config) WeekStart() (time.Weekday, error) {
	switch d, ok := dateutil.ParseWeekday(c.Schedule.WeekStart); {
	case !ok:
		return 0, fmt.Errorf("invalid week_start: %s", c.Schedule.WeekStart)
	case d != time.Sunday && d != time.Monday:
		return 0, fmt.Errorf("week_start must be sunday or monday, got %s", c.Schedule.WeekStart)
	default:
		return d, nil
	}
}

// LogLevel returns the configured logrus level, info if it does not parse.
func (c *Config) LogLevel() logrus.Level {
	lvl, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
