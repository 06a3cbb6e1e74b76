package utils

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// BoxKind selects the colour and marker of a summary box.
type BoxKind int

const (
	InfoBox BoxKind = iota
	SuccessBox
	WarningBox
	ErrorBox
)

var boxStyles = map[BoxKind]struct {
	marker string
	color  lipgloss.Color
}{
	InfoBox:    {"ℹ", lipgloss.Color("86")},
	SuccessBox: {"✓", lipgloss.Color("42")},
	WarningBox: {"⚠", lipgloss.Color("178")},
	ErrorBox:   {"✗", lipgloss.Color("196")},
}

// Box is a titled, rounded summary shown after a command completes.
type Box struct {
	kind  BoxKind
	title string
	lines []string
	width int
}

// NewBox returns an empty box sized to the terminal.
func NewBox(kind BoxKind, title string) *Box {
	return &Box{kind: kind, title: title, width: terminalWidth() - 8}
}

// AddLine appends a line of content.
func (b *Box) AddLine(text string) *Box {
	b.lines = append(b.lines, text)
	return b
}

// AddField appends a "label: value" line.
func (b *Box) AddField(label, value string) *Box {
	return b.AddLine(label + ": " + value)
}

// Render returns the box as a string without a trailing newline.
func (b *Box) Render() string {
	s := boxStyles[b.kind]
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.color).
		Padding(0, 1)
	if b.width > 20 {
		style = style.MaxWidth(b.width)
	}

	title := lipgloss.NewStyle().Foreground(s.color).Bold(true).Render(s.marker + " " + b.title)
	body := append([]string{title}, b.lines...)
	return style.Render(strings.Join(body, "\n"))
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
