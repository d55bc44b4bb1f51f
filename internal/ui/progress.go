package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"romrelease/internal/estimate"
	"romrelease/pkg/utils"

	"github.com/charmbracelet/lipgloss"
)

const (
	barWidth   = 20
	barFilled  = "█"
	barEmpty   = "▒"
	etaUnknown = "Calculating..."
)

// Frame is one progress snapshot for the file being uploaded
type Frame struct {
	FileIndex int // 0-based
	FileCount int
	FileSize  uint64
	Estimate  estimate.Estimate
}

// ProgressRenderer draws a single overwritable progress line per file. It
// remembers the width of the last line so a shorter line never leaves stray
// characters behind, and throttles redraws to one per interval.
type ProgressRenderer struct {
	out      io.Writer
	interval time.Duration

	lastDraw  time.Time
	lastWidth int
	open      bool
}

// NewProgressRenderer creates a renderer writing to out (stdout when nil)
func NewProgressRenderer(out io.Writer, interval time.Duration) *ProgressRenderer {
	if out == nil {
		out = os.Stdout
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &ProgressRenderer{
		out:      out,
		interval: interval,
	}
}

// Reset prepares the renderer for a new file started at now
func (p *ProgressRenderer) Reset(now time.Time) {
	p.lastDraw = now
	p.lastWidth = 0
	p.open = false
}

// Due reports whether enough time has passed since the last draw
func (p *ProgressRenderer) Due(now time.Time) bool {
	return now.Sub(p.lastDraw) >= p.interval
}

// Draw clears the previous line and writes the new one without a newline
func (p *ProgressRenderer) Draw(now time.Time, f Frame) {
	line := FormatLine(f)

	if p.lastWidth > 0 {
		fmt.Fprint(p.out, "\r"+strings.Repeat(" ", p.lastWidth))
	}
	fmt.Fprint(p.out, "\r"+line)

	p.lastWidth = lipgloss.Width(line)
	p.lastDraw = now
	p.open = true
}

// Skip advances the throttle without drawing
func (p *ProgressRenderer) Skip(now time.Time) {
	p.lastDraw = now
}

// Finish terminates the current progress line, if any
func (p *ProgressRenderer) Finish() {
	if p.open {
		fmt.Fprintln(p.out)
	}
	p.open = false
	p.lastWidth = 0
}

// FormatLine renders a frame as
// "File 1/3: [████▒▒▒▒...] 18.0% • 90.0 MB/500.0 MB • 1.5 MB/s • ETA: 5m 0s • Uploading"
func FormatLine(f Frame) string {
	e := f.Estimate

	eta := etaUnknown
	if e.ETAKnown {
		eta = utils.FormatTime(e.ETA)
	}

	return fmt.Sprintf("File %d/%d: [%s] %5.1f%% • %s/%s • %s • ETA: %s • %s",
		f.FileIndex+1,
		f.FileCount,
		Bar(e.Percentage),
		e.Percentage,
		utils.FormatSize(uint64(e.Bytes)),
		utils.FormatSize(f.FileSize),
		utils.FormatSpeed(e.Speed),
		eta,
		e.State,
	)
}

// Bar returns a fixed-width bar proportional to percentage
func Bar(percentage float64) string {
	filled := int(barWidth * percentage / 100)
	if filled < 0 {
		filled = 0
	}
	if filled > barWidth {
		filled = barWidth
	}
	return strings.Repeat(barFilled, filled) + strings.Repeat(barEmpty, barWidth-filled)
}
