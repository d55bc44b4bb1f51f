package reporter

import (
	"fmt"
	"io"
	"os"
	"time"

	"romrelease/pkg/utils"
)

// SummaryReporter prints the fixed, line-oriented parts of a publish run:
// headers, per-file completion and the overall aggregate
type SummaryReporter struct {
	out io.Writer
}

// NewSummaryReporter creates a reporter writing to out (stdout when nil)
func NewSummaryReporter(out io.Writer) *SummaryReporter {
	if out == nil {
		out = os.Stdout
	}
	return &SummaryReporter{out: out}
}

// Writer returns the reporter output
func (r *SummaryReporter) Writer() io.Writer {
	return r.out
}

// SessionStart prints the total size and the estimation notice
func (r *SummaryReporter) SessionStart(totalSize uint64, fileCount int) {
	fmt.Fprintf(r.out, "Total upload size: %s across %d files\n", utils.FormatSize(totalSize), fileCount)
	fmt.Fprintln(r.out, "\nNote: Progress is estimated and may not reflect actual upload status.")
	fmt.Fprintln(r.out, "GitHub CLI doesn't provide real-time upload progress information.")
}

// CreatingRelease prints the release creation prompt without a newline
func (r *SummaryReporter) CreatingRelease() {
	fmt.Fprint(r.out, "\nCreating empty release...")
}

// ReleaseCreated completes the CreatingRelease line
func (r *SummaryReporter) ReleaseCreated() {
	fmt.Fprintln(r.out, " Done!")
}

// ReleaseFailed completes the CreatingRelease line with the diagnostic
func (r *SummaryReporter) ReleaseFailed(diagnostic string) {
	fmt.Fprintf(r.out, "\nError creating release: %s\n", diagnostic)
}

// FileStart prints the header for file index (0-based) of count
func (r *SummaryReporter) FileStart(index, count int, name string, size uint64) {
	fmt.Fprintf(r.out, "\nUploading file %d/%d: %s\n", index+1, count, name)
	fmt.Fprintf(r.out, "File size: %s\n", utils.FormatSize(size))
}

// FileCompleted prints the completion line and effective speed for one file
func (r *SummaryReporter) FileCompleted(index, count int, name string, size uint64, elapsed time.Duration) {
	fmt.Fprintf(r.out, "✓ File %d/%d completed: %s\n", index+1, count, name)
	fmt.Fprintf(r.out, "  Size: %s • Time: %s • Speed: %s\n",
		utils.FormatSize(size),
		utils.FormatTime(elapsed),
		utils.FormatSpeed(EffectiveSpeed(size, elapsed)),
	)
}

// Overall prints the exact aggregate over fully uploaded files
func (r *SummaryReporter) Overall(uploaded, total uint64, elapsed time.Duration) {
	fmt.Fprintf(r.out, "  Overall: %5.1f%% complete • %s/%s • Elapsed: %s\n",
		OverallPercentage(uploaded, total),
		utils.FormatSize(uploaded),
		utils.FormatSize(total),
		utils.FormatTime(elapsed),
	)
}

// FileFailed prints the diagnostic of a failed upload
func (r *SummaryReporter) FileFailed(name, diagnostic string) {
	fmt.Fprintf(r.out, "\n\nError uploading file %s: %s\n", name, diagnostic)
}

// Interrupted prints the interruption notice
func (r *SummaryReporter) Interrupted() {
	fmt.Fprintln(r.out, "\n\nProcess interrupted by user. Attempting to clean up...")
}

// SessionCompleted prints the final summary
func (r *SummaryReporter) SessionCompleted(fileCount int, totalSize uint64, elapsed time.Duration) {
	fmt.Fprintf(r.out, "\nAll %d files uploaded successfully!\n", fileCount)
	fmt.Fprintf(r.out, "Total size: %s • Completed in %s\n", utils.FormatSize(totalSize), utils.FormatTime(elapsed))
}

// OverallPercentage returns uploaded/total in percent, 100 for an empty total
func OverallPercentage(uploaded, total uint64) float64 {
	if total == 0 {
		return 100
	}
	return float64(uploaded) / float64(total) * 100
}

// EffectiveSpeed returns size/elapsed in bytes per second
func EffectiveSpeed(size uint64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(size) / elapsed.Seconds()
}
