package theme

import (
	"math"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/calgrid/internal/event"
)

// Palette holds precomputed colors derived from a Theme.
type Palette struct {
	Bg      lipgloss.Color
	Fg      lipgloss.Color
	FgMuted lipgloss.Color
	Accent  lipgloss.Color
	Warning lipgloss.Color

	labelBg  map[event.Label]lipgloss.Color
	labelFg  map[event.Label]lipgloss.Color
	mutedBg  map[event.Label]lipgloss.Color
	altShade map[event.Label]lipgloss.Color
}

// NewPalette derives a Palette from the provided Theme.
func NewPalette(t *Theme) *Palette {
	if t == nil {
		t, _ = Load(DefaultName)
	}

	isLight := isLightTheme(t.Bg)
	p := &Palette{
		Bg:       lipgloss.Color(t.Bg),
		Fg:       lipgloss.Color(t.Fg),
		FgMuted:  lipgloss.Color(t.FgMuted),
		Accent:   lipgloss.Color(t.Accent),
		Warning:  lipgloss.Color(t.Warning),
		labelBg:  make(map[event.Label]lipgloss.Color),
		labelFg:  make(map[event.Label]lipgloss.Color),
		mutedBg:  make(map[event.Label]lipgloss.Color),
		altShade: make(map[event.Label]lipgloss.Color),
	}

	for label, base := range t.Labels.byLabel() {
		bg := eventBg(base, t.Bg, isLight)
		p.labelBg[label] = lipgloss.Color(bg)
		p.labelFg[label] = lipgloss.Color(chooseTextColor(bg, "#ffffff", "#000000"))
		p.mutedBg[label] = lipgloss.Color(eventMutedBg(base, t.Bg, isLight))
		p.altShade[label] = lipgloss.Color(alternateShade(bg, isLight))
	}
	return p
}

// EventBg returns the bar background for a label. Private events use the
// muted shade; alt selects the alternate shade used for neighbouring lanes.
func (p *Palette) EventBg(label event.Label, private, alt bool) lipgloss.Color {
	switch {
	case private:
		return p.mutedBg[label]
	case alt:
		return p.altShade[label]
	}
	return p.labelBg[label]
}

// EventFg returns readable text color on the label's background.
func (p *Palette) EventFg(label event.Label) lipgloss.Color {
	if c, ok := p.labelFg[label]; ok {
		return c
	}
	return p.Fg
}

func (l LabelColors) byLabel() map[event.Label]string {
	return map[event.Label]string{
		event.LabelFree:        l.Free,
		event.LabelTentative:   l.Tentative,
		event.LabelBusy:        l.Busy,
		event.LabelOutOfOffice: l.OutOfOffice,
		event.LabelMeeting:     l.Meeting,
		event.LabelTraining:    l.Training,
		event.LabelTravel:      l.Travel,
		event.LabelOff:         l.Off,
	}
}

func isLightTheme(bg string) bool {
	return relativeLuminance(bg) > 0.55
}

func eventBg(accent, bg string, isLight bool) string {
	if isLight {
		return blendColors(accent, bg, 0.65)
	}
	return scaleColor(accent, 0.50, 40)
}

func eventMutedBg(accent, bg string, isLight bool) string {
	if isLight {
		return blendColors(accent, bg, 0.85)
	}
	return scaleColor(accent, 0.30, 30)
}

// scaleColor darkens a hex color by factor, keeping each channel at or above floor.
func scaleColor(hex string, factor float64, floor int) string {
	r, g, b, ok := rgb(hex)
	if !ok {
		return hex
	}
	scale := func(c int) int {
		return max(floor, int(float64(c)*factor))
	}
	return formatHexColor(scale(r), scale(g), scale(b))
}

// alternateShade creates a subtle alternate shade for adjacent lanes.
func alternateShade(hex string, isLight bool) string {
	if isLight {
		return blendColors(hex, "#000000", 0.10)
	}
	return blendColors(hex, "#ffffff", 0.20)
}

func rgb(hex string) (r, g, b int, ok bool) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0, false
	}
	return parseHex(hex[1:3]), parseHex(hex[3:5]), parseHex(hex[5:7]), true
}

// parseHex parses a 2-character hex string into an integer.
func parseHex(s string) int {
	var val int
	for i := 0; i < len(s); i++ {
		val *= 16
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			val += int(c - '0')
		case c >= 'a' && c <= 'f':
			val += int(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			val += int(c - 'A' + 10)
		}
	}
	return val
}

// formatHexColor formats RGB values as a hex color string.
func formatHexColor(r, g, b int) string {
	const hex = "0123456789abcdef"
	return string([]byte{'#', hex[r>>4], hex[r&0xf], hex[g>>4], hex[g&0xf], hex[b>>4], hex[b&0xf]})
}

func chooseTextColor(bg, lightText, darkText string) string {
	if contrastRatio(bg, lightText) >= contrastRatio(bg, darkText) {
		return lightText
	}
	return darkText
}

func contrastRatio(a, b string) float64 {
	l1 := relativeLuminance(a)
	l2 := relativeLuminance(b)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

func relativeLuminance(hex string) float64 {
	r, g, b, ok := rgb(hex)
	if !ok {
		return 0
	}
	return 0.2126*srgbToLinear(r) + 0.7152*srgbToLinear(g) + 0.0722*srgbToLinear(b)
}

func srgbToLinear(c int) float64 {
	v := float64(c) / 255.0
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// blendColors mixes a toward b by ratio (0 keeps a, 1 gives b).
func blendColors(a, b string, ratio float64) string {
	ar, ag, ab, okA := rgb(a)
	br, bg, bb, okB := rgb(b)
	if !okA || !okB {
		return a
	}
	ratio = min(1, max(0, ratio))
	mix := func(x, y int) int {
		return int(math.Round(float64(x)*(1-ratio) + float64(y)*ratio))
	}
	return formatHexColor(mix(ar, br), mix(ag, bg), mix(ab, bb))
}
