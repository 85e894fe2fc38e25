// Package theme provides color themes for rendered calendars.
package theme

import (
	"embed"
	"fmt"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed embedded/*.toml
var embeddedThemes embed.FS

// DefaultName is loaded when no theme is configured.
const DefaultName = "mocha"

// Theme holds the colors used to draw a calendar.
type Theme struct {
	Name    string `toml:"name"`
	Bg      string `toml:"bg"`       // Base background
	Fg      string `toml:"fg"`       // Primary foreground
	FgMuted string `toml:"fg_muted"` // Days outside the month, private titles
	Accent  string `toml:"accent"`   // Headers, time column
	Warning string `toml:"warning"`  // Clipped markers

	Labels LabelColors `toml:"labels"`
}

// LabelColors holds one base color per event label.
type LabelColors struct {
	Free        string `toml:"free"`
	Tentative   string `toml:"tentative"`
	Busy        string `toml:"busy"`
	OutOfOffice string `toml:"out_of_office"`
	Meeting     string `toml:"meeting"`
	Training    string `toml:"training"`
	Travel      string `toml:"travel"`
	Off         string `toml:"off"`
}

// Load loads a theme by name from embedded files.
// Falls back to mocha if the theme is not found.
func Load(name string) (*Theme, error) {
	if name == "" {
		name = DefaultName
	}
	name = strings.ToLower(name)

	data, err := embeddedThemes.ReadFile("embedded/" + name + ".toml")
	if err != nil {
		if name != DefaultName {
			return Load(DefaultName)
		}
		return nil, fmt.Errorf("loading theme %q: %w", name, err)
	}

	var t Theme
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing theme %q: %w", name, err)
	}
	t.applyDefaults()

	return &t, nil
}

func (t *Theme) applyDefaults() {
	if t.FgMuted == "" {
		t.FgMuted = t.Fg
	}
	if t.Warning == "" {
		t.Warning = t.Accent
	}
	l := &t.Labels
	for _, c := range []*string{&l.Free, &l.Tentative, &l.Busy, &l.OutOfOffice, &l.Meeting, &l.Training, &l.Travel, &l.Off} {
		if *c == "" {
			*c = t.Accent
		}
	}
}

// Available returns a list of available theme names.
func Available() []string {
	return []string{"mocha", "latte"}
}

// IsAvailable reports whether a theme name is available.
func IsAvailable(name string) bool {
	return slices.Contains(Available(), strings.ToLower(name))
}
