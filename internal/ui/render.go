package ui

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/calgrid/internal/dateutil"
	"github.com/javiermolinar/calgrid/internal/store"
)

func (a *App) renderCmd() *cobra.Command {
	var (
		drafts string
		date   string
		week   bool
		month  bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Lay out a drafts file without starting a session",
		Long: `Validate every draft in a file and draw the resulting calendar.

The file holds one JSON draft or an array of drafts, or an iCalendar
document when its name ends in .ics. Drafts go through the same validation
as in a session; the first rejected draft aborts the render.`,
		Example: `  calgrid render --drafts week.json --date 2025-03-10
  calgrid render --drafts week.json --date 2025-03-10 --week --json
  calgrid render --drafts team.ics --month --date 2025-03-01`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if week && month {
				return fmt.Errorf("--week and --month are mutually exclusive")
			}
			if month && asJSON {
				return fmt.Errorf("--json is not available for --month")
			}
			return a.render(drafts, date, week, month, asJSON)
		},
	}

	cmd.Flags().StringVarP(&drafts, "drafts", "f", "", "Drafts file (JSON or .ics)")
	cmd.Flags().StringVarP(&date, "date", "d", "today", "Day to draw: YYYY-MM-DD, today, tomorrow, monday...")
	cmd.Flags().BoolVarP(&week, "week", "w", false, "Draw the week containing --date")
	cmd.Flags().BoolVarP(&month, "month", "m", false, "Draw the month containing --date")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the lane layout as JSON")
	_ = cmd.MarkFlagRequired("drafts")

	return cmd
}

func (a *App) render(path, dateStr string, week, month, asJSON bool) error {
	v, err := newViewer(a.config)
	if err != nil {
		return err
	}

	drafts, err := loadDrafts(path)
	if err != nil {
		return err
	}
	st, err := store.New(store.Options{
		Grid:       v.grid,
		Location:   v.loc,
		Owner:      a.config.Session.Owner,
		HistoryMax: a.config.History.MaxEntries,
		Logger:     logrus.NewEntry(a.log),
		Seed:       drafts,
	})
	if err != nil {
		if ve, ok := store.AsValidation(err); ok && len(ve.Conflicts) > 0 {
			return fmt.Errorf("%w (conflicts with %v)", err, ve.ConflictIDs())
		}
		return err
	}

	date, err := dateutil.ParseRelativeDate(dateStr, time.Now().In(v.loc))
	if err != nil {
		return err
	}
	events := st.Events()

	switch {
	case month:
		return v.month(a.out, events, date.Year(), date.Month())
	case week && asJSON:
		return v.json(a.out, events, dateutil.StartOfWeek(date, v.weekStart), 7)
	case week:
		return v.week(a.out, events, date)
	case asJSON:
		return v.json(a.out, events, date, 1)
	default:
		return v.day(a.out, events, date)
	}
}
