package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TomeClicker theme (CLI + TUI).

const (
	IconTome    = "📖"
	IconSparkle = "✨"
	IconClick   = "👆"
	IconCrit    = "💥"
	IconUp      = "⬆️"
	IconShop    = "🛒"
	IconTrain   = "🏋️"
	IconMind    = "🧘"
	IconJournal = "📜"
	IconSave    = "💾"
	IconLock    = "🔒"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconReset   = "🔁"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	BadgeLevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
	BadgeCrit    = lipgloss.NewStyle().Bold(true).Foreground(cBad).Render("CRIT")
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// Enabled renders an unlock state.
func Enabled(ok bool) string {
	if ok {
		return Good.Render("unlocked")
	}
	return Bad.Render("locked")
}

// ActionStatus renders the state of an idle action.
func ActionStatus(active, completed bool) string {
	switch {
	case completed:
		return Good.Render("done")
	case active:
		return H2.Render("active")
	default:
		return Muted.Render("idle")
	}
}

// Exp formats an EXP amount: whole numbers below a thousand, then k/M/B/T suffixes.
func Exp(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs < 1000:
		if v == math.Trunc(v) {
			return strconv.FormatFloat(v, 'f', 0, 64)
		}
		return strconv.FormatFloat(v, 'f', 1, 64)
	case abs < 1e6:
		return strconv.FormatFloat(v/1e3, 'f', 1, 64) + "k"
	case abs < 1e9:
		return strconv.FormatFloat(v/1e6, 'f', 2, 64) + "M"
	case abs < 1e12:
		return strconv.FormatFloat(v/1e9, 'f', 2, 64) + "B"
	default:
		return strconv.FormatFloat(v/1e12, 'f', 2, 64) + "T"
	}
}

// Percent renders a 0..1 fraction.
func Percent(f float64) string {
	return strconv.FormatFloat(f*100, 'f', 1, 64) + "%"
}

// ProgressBar draws a fixed-width bar for ratio in [0,1].
func ProgressBar(ratio float64, width int) string {
	if width <= 3 {
		width = 3
	}
	if ratio < 0 || math.IsNaN(ratio) {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(width))
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
