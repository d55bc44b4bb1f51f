package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"romrelease/internal/estimate"
)

const mib = 1024 * 1024

func TestBarWidthIsFixed(t *testing.T) {
	for _, pct := range []float64{-5, 0, 4.9, 5, 18, 50, 99.9, 100, 250} {
		bar := Bar(pct)
		if n := utf8.RuneCountInString(bar); n != 20 {
			t.Fatalf("Bar(%v) has %d cells", pct, n)
		}
	}
	if got := Bar(50); got != strings.Repeat("█", 10)+strings.Repeat("▒", 10) {
		t.Fatalf("unexpected half bar %q", got)
	}
	if got := Bar(99.9); strings.Count(got, "█") != 19 {
		t.Fatalf("99.9%% should not fill the bar, got %q", got)
	}
}

func TestFormatLine(t *testing.T) {
	f := Frame{
		FileIndex: 0,
		FileCount: 3,
		FileSize:  500 * mib,
		Estimate:  estimate.Compute(500*mib, 60*time.Second, 3*mib, 0),
	}
	line := FormatLine(f)

	for _, want := range []string{
		"File 1/3: [███▒",
		" 18.0% • ",
		"90.0 MB/500.0 MB",
		"1.5 MB/s",
		"ETA: 5m 0s",
		"• Uploading",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}

func TestFormatLineUnknownETA(t *testing.T) {
	line := FormatLine(Frame{FileIndex: 1, FileCount: 2, FileSize: mib})
	if !strings.Contains(line, "ETA: Calculating...") {
		t.Fatalf("expected unknown ETA, got %q", line)
	}
	if !strings.Contains(line, "•   0.0% •") && !strings.Contains(line, "]   0.0%") {
		t.Fatalf("expected padded zero percentage, got %q", line)
	}
	if !strings.HasSuffix(line, "Starting") {
		t.Fatalf("expected Starting state, got %q", line)
	}
}

func TestRendererThrottle(t *testing.T) {
	var buf bytes.Buffer
	r := NewProgressRenderer(&buf, time.Second)
	start := time.Unix(1000, 0)
	r.Reset(start)

	if r.Due(start.Add(900 * time.Millisecond)) {
		t.Fatal("should not be due before the interval")
	}
	if !r.Due(start.Add(time.Second)) {
		t.Fatal("should be due after the interval")
	}

	r.Draw(start.Add(time.Second), Frame{FileCount: 1, FileSize: mib})
	if r.Due(start.Add(1500 * time.Millisecond)) {
		t.Fatal("draw should restart the throttle window")
	}
	if !r.Due(start.Add(2 * time.Second)) {
		t.Fatal("should be due one interval after the draw")
	}

	r.Skip(start.Add(2 * time.Second))
	if r.Due(start.Add(2500 * time.Millisecond)) {
		t.Fatal("skip should restart the throttle window")
	}
}

func TestRendererClearsPreviousLine(t *testing.T) {
	var buf bytes.Buffer
	r := NewProgressRenderer(&buf, time.Second)
	now := time.Unix(0, 0)
	r.Reset(now)

	first := Frame{FileCount: 1, FileSize: 500 * mib, Estimate: estimate.Compute(500*mib, 60*time.Second, 3*mib, 0)}
	r.Draw(now, first)
	firstLine := FormatLine(first)
	if buf.String() != "\r"+firstLine {
		t.Fatalf("first draw wrote %q", buf.String())
	}
	if strings.Contains(buf.String(), "\n") {
		t.Fatal("progress line must not end with a newline")
	}

	buf.Reset()
	second := Frame{FileCount: 1, FileSize: mib}
	r.Draw(now.Add(time.Second), second)
	want := "\r" + strings.Repeat(" ", utf8.RuneCountInString(firstLine)) + "\r" + FormatLine(second)
	if buf.String() != want {
		t.Fatalf("second draw wrote %q, want %q", buf.String(), want)
	}

	buf.Reset()
	r.Finish()
	if buf.String() != "\n" {
		t.Fatalf("finish wrote %q", buf.String())
	}
	buf.Reset()
	r.Finish()
	if buf.Len() != 0 {
		t.Fatal("finish without an open line should write nothing")
	}
}

func TestResetForgetsPreviousWidth(t *testing.T) {
	var buf bytes.Buffer
	r := NewProgressRenderer(&buf, time.Second)
	now := time.Unix(0, 0)
	r.Reset(now)
	r.Draw(now, Frame{FileCount: 1, FileSize: mib})
	r.Finish()

	buf.Reset()
	r.Reset(now)
	f := Frame{FileIndex: 1, FileCount: 2, FileSize: mib}
	r.Draw(now, f)
	if buf.String() != "\r"+FormatLine(f) {
		t.Fatalf("new file should not clear a stale width, wrote %q", buf.String())
	}
}
