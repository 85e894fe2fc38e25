// Package render draws day, week and month layouts as text or JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/javiermolinar/calgrid/internal/layout"
)

// DayEntries is the renderer schema for one day: entries keyed by event id.
type DayEntries map[string]layout.Entry

// Schema converts layouts into the renderer schema keyed by date.
func Schema(days []layout.DayLayout) map[string]DayEntries {
	out := make(map[string]DayEntries, len(days))
	for _, d := range days {
		out[d.Date.Format(time.DateOnly)] = DayEntries(d.Map())
	}
	return out
}

// JSON writes the renderer schema of days as indented JSON.
func JSON(w io.Writer, days []layout.DayLayout) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Schema(days)); err != nil {
		return fmt.Errorf("encoding layout: %w", err)
	}
	return nil
}
