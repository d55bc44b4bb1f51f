package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const bannerWidth = 55

var (
	bannerStyle  = lipgloss.NewStyle().Bold(true)
	sectionStyle = lipgloss.NewStyle().Underline(true)
)

// Banner prints the interactive mode header
func Banner(out io.Writer, title string) {
	rule := strings.Repeat("=", bannerWidth)
	pad := (bannerWidth - lipgloss.Width(title)) / 2
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, bannerStyle.Render(strings.Repeat(" ", pad)+title))
	fmt.Fprintln(out, rule)
}

// NumberedList prints a heading followed by entries numbered from offset+1
func NumberedList(out io.Writer, heading string, entries []string, offset int) {
	if len(entries) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s\n", sectionStyle.Render(heading))
	for i, e := range entries {
		fmt.Fprintf(out, "  %d. %s\n", offset+i+1, e)
	}
}

// CommandBlock prints the command about to be executed between rules
func CommandBlock(out io.Writer, command string) {
	rule := strings.Repeat("=", 32)
	fmt.Fprintln(out, "\nFinal command to be executed:")
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, command)
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out)
}
