package ui

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-shellwords"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/calgrid/internal/db"
	"github.com/javiermolinar/calgrid/internal/event"
	"github.com/javiermolinar/calgrid/internal/store"
)

// errQuit ends a session.
var errQuit = errors.New("quit")

// ErrUnbalancedQuote is returned when a session line has an unterminated quote.
var ErrUnbalancedQuote = errors.New("unterminated quote or escape")

// ErrShellOperator is returned for an unquoted shell operator in a line.
var ErrShellOperator = errors.New("quote the shell operator")

const prompt = "calgrid> "

type sessionFlags struct {
	script  string
	seed    string
	journal string
}

func (a *App) sessionCmd() *cobra.Command {
	var f sessionFlags
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Start an interactive scheduling session",
		Long: `Start a session over an in-memory calendar.

Each line is one command: create, update, move, delete, undo, redo, list,
show, check, layout, month, summary, export, import, journal, history
and quit.
Arguments follow shell quoting rules. Type "help" for the full list.

The calendar is discarded when the session ends. Committed commands are
written to the command journal.`,
		Example: `  calgrid session
  calgrid session --seed week.json
  calgrid session --script plan.txt --journal ~/.local/share/calgrid/journal.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSession(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVar(&f.script, "script", "", "Read commands from a file instead of stdin")
	cmd.Flags().StringVar(&f.seed, "seed", "", "JSON or .ics drafts to load at start (overrides config)")
	cmd.Flags().StringVar(&f.journal, "journal", "", "Journal database path (overrides config)")

	return cmd
}

func (a *App) runSession(ctx context.Context, f sessionFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := a.newSession(f)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	in := a.in
	interactive := false
	if f.script != "" {
		path, err := resolvePath(f.script)
		if err != nil {
			return err
		}
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer func() { _ = file.Close() }()
		in = file
	} else if file, ok := a.in.(*os.File); ok && isTerminal(file) {
		interactive = true
		fmt.Fprintln(a.out, formatMuted(`calgrid session. Type "help" for commands, "quit" to leave.`))
	}

	return s.Run(ctx, in, interactive)
}

func (a *App) newSession(f sessionFlags) (*Session, error) {
	cfg := a.config
	v, err := newViewer(cfg)
	if err != nil {
		return nil, err
	}

	seedPath := cfg.Session.SeedPath
	if f.seed != "" {
		seedPath = f.seed
	}
	var seed []event.Draft
	if seedPath != "" {
		seed, err = loadDrafts(seedPath)
		if err != nil {
			return nil, fmt.Errorf("loading seed: %w", err)
		}
	}

	st, err := store.New(store.Options{
		Grid:       v.grid,
		Location:   v.loc,
		Owner:      cfg.Session.Owner,
		HistoryMax: cfg.History.MaxEntries,
		Logger:     logrus.NewEntry(a.log),
		Seed:       seed,
	})
	if err != nil {
		return nil, err
	}

	journalPath := cfg.Session.JournalPath
	if f.journal != "" {
		journalPath = f.journal
	}
	var j *db.Journal
	if journalPath != "" {
		if journalPath != db.MemoryPath {
			if journalPath, err = resolvePath(journalPath); err != nil {
				return nil, err
			}
		}
		j, err = db.New(journalPath)
		if err != nil {
			return nil, err
		}
	}

	s := startSession(st, j, v, a.out)
	s.log = a.log.WithFields(logrus.Fields{"component": "session", "session": s.ID})
	s.log.WithField("events", st.Len()).Debug("session started")
	return s, nil
}

// Session is an interactive shell over one store.
type Session struct {
	ID string

	store   *store.Store
	journal *db.Journal // nil disables journaling
	view    viewer
	out     io.Writer
	log     *logrus.Entry
	now     func() time.Time
}

// startSession creates a session writing to out. j may be nil.
func startSession(st *store.Store, j *db.Journal, v viewer, out io.Writer) *Session {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Session{
		ID:      uuid.NewString(),
		store:   st,
		journal: j,
		view:    v,
		out:     out,
		log:     logrus.NewEntry(l),
		now:     time.Now,
	}
}

// Close releases the journal.
func (s *Session) Close() error {
	if s.journal == nil {
		return nil
	}
	return s.journal.Close()
}

// Run reads commands from in until EOF or quit. Failed commands are
// reported and the session continues.
func (s *Session) Run(ctx context.Context, in io.Reader, interactive bool) error {
	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprint(s.out, prompt)
		}
		if !scanner.Scan() {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		args, err := splitArgs(line)
		if err != nil {
			s.printError(err)
			continue
		}
		if err := s.Exec(ctx, args); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			s.printError(err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading commands: %w", err)
	}
	return nil
}

// Exec runs one command line, already split into arguments.
func (s *Session) Exec(ctx context.Context, args []string) error {
	root := s.commandTree()
	root.SetArgs(args)
	root.SetOut(s.out)
	root.SetErr(s.out)
	return root.ExecuteContext(ctx)
}

// apply runs cmd against the store, reports the result and journals it.
func (s *Session) apply(ctx context.Context, cmd store.Command) (store.Result, error) {
	res, err := s.store.Apply(cmd)
	if err != nil {
		return res, err
	}
	s.printResult(res)

	if s.journal == nil || !res.Changed() {
		return res, nil
	}
	entry := &db.Entry{
		SessionID: s.ID,
		Kind:      string(cmd.Kind),
		EventID:   res.EventID,
		Outcome:   string(res.Outcome),
		AppliedAt: s.now(),
	}
	if cmd.Kind == store.CommandCreate || cmd.Kind == store.CommandUpdate || cmd.Kind == store.CommandMove {
		payload, err := json.Marshal(cmd.Draft)
		if err != nil {
			return res, fmt.Errorf("encoding journal payload: %w", err)
		}
		entry.Payload = string(payload)
	}
	if err := s.journal.Record(ctx, entry); err != nil {
		s.log.WithError(err).Warn("journal write failed")
	}
	return res, nil
}

// splitArgs splits a line into arguments with shell quoting rules. Shell
// operators such as ; and | are not supported and must be quoted.
func splitArgs(line string) ([]string, error) {
	p := shellwords.NewParser()
	args, err := p.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnbalancedQuote, err)
	}
	if runes := []rune(line); p.Position >= 0 && p.Position < len(runes) {
		return nil, fmt.Errorf("%w %q", ErrShellOperator, runes[p.Position])
	}
	return args, nil
}
