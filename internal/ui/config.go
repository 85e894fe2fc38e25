package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/calgrid/internal/config"
	"github.com/javiermolinar/calgrid/internal/render/theme"
)

func (a *App) configCmd() *cobra.Command {
	var initOnly, edit bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Show the configuration in effect.

If no config file exists, one is created with default values.
With --edit, every setting is prompted for and the file is saved.

Example:
  calgrid config
  calgrid config --edit`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.runConfig(initOnly, edit)
		},
	}
	cmd.Flags().BoolVar(&initOnly, "init", false, "Only create the config file if it is missing")
	cmd.Flags().BoolVar(&edit, "edit", false, "Edit settings interactively")
	return cmd
}

func (a *App) runConfig(initOnly, edit bool) error {
	configPath := a.configPath
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	fmt.Fprintf(a.out, "Config file: %s\n\n", configPath)

	cfg := a.config

	// Check if file exists
	_, fileErr := os.Stat(configPath)
	if os.IsNotExist(fileErr) {
		fmt.Fprintln(a.out, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(a.out, "Created %s\n\n", configPath)
	}
	if initOnly {
		return nil
	}

	printConfig(a.out, cfg)
	if !edit {
		return nil
	}

	reader := bufio.NewReader(a.in)
	fmt.Fprintln(a.out)

	cfg.Grid.CellMinutes = promptInt(reader, a.out, "Grid cell minutes", cfg.Grid.CellMinutes)
	cfg.Schedule.DayOpen = promptValue(reader, a.out, "Day open", cfg.Schedule.DayOpen)
	cfg.Schedule.DayClose = promptValue(reader, a.out, "Day close", cfg.Schedule.DayClose)
	cfg.Schedule.Timezone = promptValue(reader, a.out, "Timezone", cfg.Schedule.Timezone)
	cfg.Schedule.WeekStart = promptValue(reader, a.out, "Week start (sunday, monday)", cfg.Schedule.WeekStart)
	cfg.History.MaxEntries = promptInt(reader, a.out, "Undo history size", cfg.History.MaxEntries)
	cfg.Session.Owner = promptValue(reader, a.out, "Owner", cfg.Session.Owner)
	cfg.Session.SeedPath = promptValue(reader, a.out, "Seed drafts path (empty for none)", cfg.Session.SeedPath)
	cfg.Session.JournalPath = promptValue(reader, a.out, "Journal path", cfg.Session.JournalPath)
	cfg.UI.Theme = promptTheme(reader, a.out, cfg.UI.Theme)

	// Validate before saving
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(a.out, formatSuccess("\nConfiguration saved!"))
	return nil
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Current configuration:")
	fmt.Fprintln(w, "──────────────────────")
	fmt.Fprintln(w, "[grid]")
	fmt.Fprintf(w, "  cell_minutes = %d\n", cfg.Grid.CellMinutes)
	fmt.Fprintln(w, "\n[schedule]")
	fmt.Fprintf(w, "  day_open     = %s\n", cfg.Schedule.DayOpen)
	fmt.Fprintf(w, "  day_close    = %s\n", cfg.Schedule.DayClose)
	fmt.Fprintf(w, "  timezone     = %s\n", cfg.Schedule.Timezone)
	fmt.Fprintf(w, "  week_start   = %s\n", cfg.Schedule.WeekStart)
	fmt.Fprintln(w, "\n[history]")
	fmt.Fprintf(w, "  max_entries  = %d\n", cfg.History.MaxEntries)
	fmt.Fprintln(w, "\n[session]")
	fmt.Fprintf(w, "  owner        = %s\n", cfg.Session.Owner)
	if cfg.Session.SeedPath != "" {
		fmt.Fprintf(w, "  seed_path    = %s\n", cfg.Session.SeedPath)
	}
	fmt.Fprintf(w, "  journal_path = %s\n", cfg.Session.JournalPath)
	fmt.Fprintln(w, "\n[ui]")
	fmt.Fprintf(w, "  color        = %t\n", cfg.UI.Color)
	fmt.Fprintf(w, "  theme        = %s\n", cfg.UI.Theme)
	fmt.Fprintln(w, "\n[log]")
	fmt.Fprintf(w, "  level        = %s\n", cfg.Log.Level)
}

func promptValue(reader *bufio.Reader, w io.Writer, label, current string) string {
	if current == "" {
		fmt.Fprintf(w, "  %s: ", label)
	} else {
		fmt.Fprintf(w, "  %s [%s]: ", label, current)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func promptInt(reader *bufio.Reader, w io.Writer, label string, current int) int {
	for {
		value := promptValue(reader, w, label, strconv.Itoa(current))
		n, err := strconv.Atoi(value)
		if err == nil {
			return n
		}
		fmt.Fprintf(w, "  Invalid number %q\n", value)
	}
}

func promptTheme(reader *bufio.Reader, w io.Writer, current string) string {
	options := strings.Join(theme.Available(), ", ")
	label := fmt.Sprintf("UI theme (%s)", options)
	for {
		value := strings.ToLower(promptValue(reader, w, label, current))
		if theme.IsAvailable(value) {
			return value
		}
		fmt.Fprintf(w, "  Invalid theme %q. Available: %s\n", value, options)
	}
}
