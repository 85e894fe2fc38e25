package ui

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/calgrid/internal/dateutil"
	"github.com/javiermolinar/calgrid/internal/event"
	"github.com/javiermolinar/calgrid/internal/ics"
	"github.com/javiermolinar/calgrid/internal/store"
	"github.com/javiermolinar/calgrid/internal/summary"
)

// commandTree builds the commands available inside a session. A fresh tree
// is built per line so flag values never leak between lines.
func (s *Session) commandTree() *cobra.Command {
	root := &cobra.Command{
		Use:           "calgrid>",
		Short:         "Session commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	root.AddCommand(
		s.createCmd(),
		s.updateCmd(),
		s.moveCmd(),
		s.deleteCmd(),
		s.undoCmd(),
		s.redoCmd(),
		s.listCmd(),
		s.showCmd(),
		s.checkCmd(),
		s.layoutCmd(),
		s.monthCmd(),
		s.exportCmd(),
		s.importCmd(),
		s.journalCmd(),
		s.historyCmd(),
		s.summaryCmd(),
		&cobra.Command{
			Use:     "quit",
			Aliases: []string{"exit"},
			Short:   "End the session",
			Args:    cobra.NoArgs,
			RunE:    func(_ *cobra.Command, _ []string) error { return errQuit },
		},
	)
	return root
}

func (s *Session) today() time.Time {
	return s.now().In(s.store.Location())
}

func (s *Session) createCmd() *cobra.Command {
	var f draftFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event",
		Example: `  create -t "Design review" -s 2025-03-10T09:00 -e 2025-03-10T10:00 -a user_b
  create -t Standup -s "tomorrow 09:30" -e "tomorrow 09:45"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := f.draft(cmd, s.today())
			if err != nil {
				return err
			}
			_, err = s.apply(cmd.Context(), store.Create(d.Overlay(event.NewDraft("", "", ""))))
			return err
		},
	}
	f.register(cmd)
	return cmd
}

func (s *Session) updateCmd() *cobra.Command {
	var f draftFlags
	cmd := &cobra.Command{
		Use:     "update ID",
		Short:   "Edit an event; unset flags keep their value",
		Example: `  update ev-1 --title "Design review (moved)" --attendee user_b,user_c`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := f.draft(cmd, s.today())
			if err != nil {
				return err
			}
			_, err = s.apply(cmd.Context(), store.Update(args[0], d))
			return err
		},
	}
	f.register(cmd)
	return cmd
}

func (s *Session) moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move ID START END",
		Short: "Reschedule an event, as dragging or resizing it would",
		Example: `  move ev-1 2025-03-10T11:07 2025-03-10T11:52
  move ev-1 "tomorrow 14:00" "tomorrow 15:00"`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := s.today()
			_, err := s.apply(cmd.Context(), store.Move(args[0], resolveTimestamp(args[1], now), resolveTimestamp(args[2], now)))
			return err
		},
	}
}

func (s *Session) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete an event",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := s.apply(cmd.Context(), store.Delete(args[0]))
			return err
		},
	}
}

func (s *Session) undoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Undo the last change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := s.apply(cmd.Context(), store.Undo())
			return err
		},
	}
}

func (s *Session) redoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "redo",
		Short: "Redo the last undone change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := s.apply(cmd.Context(), store.Redo())
			return err
		},
	}
}

func (s *Session) listCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List events by day",
		Example: `  list
  list --from today --to next-week`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			events := s.store.Events()
			if cmd.Flags().Changed("from") || cmd.Flags().Changed("to") {
				now := s.today()
				start, err := dateutil.ParseRelativeDate(from, now)
				if err != nil {
					return fmt.Errorf("--from: %w", err)
				}
				end, err := dateutil.ParseRelativeDate(to, now)
				if err != nil {
					return fmt.Errorf("--to: %w", err)
				}
				if !cmd.Flags().Changed("to") {
					end = start
				}
				events = s.store.Between(start, end.AddDate(0, 0, 1))
			}
			if len(events) == 0 {
				fmt.Fprintln(s.out, formatMuted("no events"))
				return nil
			}
			return s.view.agenda(s.out, events)
		},
	}
	cmd.Flags().StringVar(&from, "from", "today", "First day")
	cmd.Flags().StringVar(&to, "to", "", "Last day, inclusive (default --from)")
	return cmd
}

func (s *Session) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			e, ok := s.store.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", store.ErrNotFound, args[0])
			}
			s.printEvent(e)
			return nil
		},
	}
}

func (s *Session) checkCmd() *cobra.Command {
	var (
		f       draftFlags
		exclude string
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Preview the conflicts a draft would cause",
		Example: `  check -s 2025-03-10T09:30 -e 2025-03-10T10:00 -a user_b
  check --exclude ev-1 -s 2025-03-10T11:00 -e 2025-03-10T12:00`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := f.draft(cmd, s.today())
			if err != nil {
				return err
			}
			if _, ok := s.store.Get(exclude); !ok {
				d = d.Overlay(event.NewDraft("(check)", "", ""))
			}
			conflicts, err := s.store.Check(d, exclude)
			if err != nil {
				return err
			}
			if len(conflicts) == 0 {
				fmt.Fprintln(s.out, formatSuccess("no conflicts"))
				return nil
			}
			fmt.Fprintln(s.out, formatWarn(fmt.Sprintf("%d %s", len(conflicts), plural(len(conflicts), "conflict", "conflicts"))))
			for _, c := range conflicts {
				fmt.Fprintf(s.out, "    %s\n", s.conflictLine(c))
			}
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&exclude, "exclude", "", "Treat the draft as an edit of this event")
	return cmd
}

func (s *Session) layoutCmd() *cobra.Command {
	var week, asJSON bool
	cmd := &cobra.Command{
		Use:   "layout [DATE]",
		Short: "Draw the lane layout of a day or week",
		Example: `  layout
  layout 2025-03-10 --week
  layout tomorrow --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			input := ""
			if len(args) > 0 {
				input = args[0]
			}
			date, err := dateutil.ParseRelativeDate(input, s.today())
			if err != nil {
				return err
			}
			events := s.store.Events()
			switch {
			case asJSON && week:
				first := dateutil.StartOfWeek(date, s.view.weekStart)
				return s.view.json(s.out, events, first, 7)
			case asJSON:
				return s.view.json(s.out, events, date, 1)
			case week:
				return s.view.week(s.out, events, date)
			default:
				return s.view.day(s.out, events, date)
			}
		},
	}
	cmd.Flags().BoolVarP(&week, "week", "w", false, "Show the whole week")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the layout as JSON")
	return cmd
}

func (s *Session) monthCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "month [YYYY-MM]",
		Short:   "Draw a month grid",
		Example: `  month 2025-03`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			now := s.today()
			year, month := now.Year(), now.Month()
			if len(args) > 0 {
				var err error
				year, month, err = dateutil.ParseMonth(args[0], s.store.Location())
				if err != nil {
					return err
				}
			}
			return s.view.month(s.out, s.store.Events(), year, month)
		},
	}
}

func (s *Session) exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the calendar as iCalendar",
		Example: `  export
  export --out ~/calendar.ics`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			events := s.store.Events()
			if out == "" {
				return ics.Export(s.out, events, ics.DefaultProdID)
			}
			path, err := resolvePath(out)
			if err != nil {
				return err
			}
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("creating export file: %w", err)
			}
			if err := ics.Export(f, events, ics.DefaultProdID); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing export file: %w", err)
			}
			fmt.Fprintf(s.out, "%s exported %d %s to %s\n", formatSuccess("✓"),
				len(events), plural(len(events), "event", "events"), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func (s *Session) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Create events from a JSON drafts file or an .ics file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drafts, err := loadDrafts(args[0])
			if err != nil {
				return err
			}
			var created, rejected int
			for _, d := range drafts {
				if _, err := s.apply(cmd.Context(), store.Create(d)); err != nil {
					s.printError(err)
					rejected++
					continue
				}
				created++
			}
			fmt.Fprintf(s.out, "imported %d, rejected %d\n", created, rejected)
			return nil
		},
	}
}

func (s *Session) journalCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List the commands committed in this session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if s.journal == nil {
				fmt.Fprintln(s.out, formatMuted("journal disabled"))
				return nil
			}
			if all {
				return s.printSessions(cmd.Context())
			}
			entries, err := s.journal.List(cmd.Context(), s.ID)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(s.out, formatMuted("no commands yet"))
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(s.out, "%4d  %s  %-7s %-8s %s\n",
					e.Seq,
					e.AppliedAt.In(s.store.Location()).Format("15:04:05"),
					e.Kind,
					e.Outcome,
					e.EventID,
				)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Count the commands of every session in the journal")
	return cmd
}

func (s *Session) printSessions(ctx context.Context) error {
	counts, err := s.journal.Sessions(ctx)
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		fmt.Fprintln(s.out, formatMuted("no commands yet"))
		return nil
	}
	ids := slices.Sorted(maps.Keys(counts))
	for _, id := range ids {
		marker := " "
		if id == s.ID {
			marker = "*"
		}
		fmt.Fprintf(s.out, "%s %s  %d %s\n", marker, id, counts[id], plural(counts[id], "command", "commands"))
	}
	return nil
}

func (s *Session) historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the undo and redo depth",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			undo, redo := s.store.HistoryDepth()
			fmt.Fprintf(s.out, "undo %d, redo %d, %d events\n", undo, redo, s.store.Len())
			return nil
		},
	}
}

func (s *Session) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "summary [DATE]",
		Short:   "Summarize booked time in the week containing DATE",
		Example: `  summary
  summary 2025-03-10`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			input := ""
			if len(args) > 0 {
				input = args[0]
			}
			date, err := dateutil.ParseRelativeDate(input, s.today())
			if err != nil {
				return err
			}
			ws := summary.SummarizeWeek(date, s.store.Events(), summary.Options{
				WeekStart: s.view.weekStart,
				Window:    s.view.window,
				Grid:      s.view.grid,
			})
			s.printSummary(ws)
			return nil
		},
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
