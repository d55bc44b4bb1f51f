package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"romrelease/internal/estimate"
	"romrelease/internal/release"
	"romrelease/internal/reporter"
	"romrelease/internal/ui"
	"romrelease/pkg/types"

	"github.com/charmbracelet/log"
)

const mib = 1024 * 1024

type fakeHandle struct {
	pollsUntilDone int
	exitCode       int
	output         string

	polls  int
	killed bool
}

func (h *fakeHandle) Poll() release.Status {
	h.polls++
	if h.killed || h.polls <= h.pollsUntilDone {
		return release.Status{}
	}
	return release.Status{Done: true, ExitCode: h.exitCode, Output: h.output}
}

func (h *fakeHandle) Kill() error {
	h.killed = true
	return nil
}

type fakeAdapter struct {
	createErr error
	handles   []*fakeHandle
	onUpload  func(index int)

	created bool
	uploads []string
}

func (a *fakeAdapter) TagExists(ctx context.Context, tag string) (bool, error) {
	return false, nil
}

func (a *fakeAdapter) CreateRelease(ctx context.Context, tag, title, notes string) (release.Release, error) {
	if a.createErr != nil {
		return release.Release{}, a.createErr
	}
	a.created = true
	return release.Release{Tag: tag, URL: "https://example.invalid/releases/" + tag}, nil
}

func (a *fakeAdapter) UploadFile(ctx context.Context, rel release.Release, path string) (release.AsyncHandle, error) {
	idx := len(a.uploads)
	a.uploads = append(a.uploads, path)
	if a.onUpload != nil {
		a.onUpload(idx)
	}
	return a.handles[idx], nil
}

// steppingClock advances by step on every reading
func steppingClock(step time.Duration) func() time.Time {
	now := time.Unix(1_700_000_000, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func testRequest(sizes ...uint64) types.ReleaseRequest {
	req := types.ReleaseRequest{Tag: "lineage-21.0-20240101", Title: "lineage-21.0-20240101", Notes: "- test"}
	for i, size := range sizes {
		name := string(rune('a'+i)) + ".img"
		req.Files = append(req.Files, types.FileRef{Path: "/tmp/" + name, Name: name, Size: size})
	}
	return req
}

func newTestPublisher(adapter release.Adapter, out io.Writer) *Publisher {
	return NewPublisher(
		adapter,
		ui.NewProgressRenderer(out, time.Second),
		reporter.NewSummaryReporter(out),
		estimate.DefaultModel(),
		time.Millisecond,
	).WithClock(steppingClock(500 * time.Millisecond))
}

func testContext() context.Context {
	return log.WithContext(context.Background(), log.NewWithOptions(io.Discard, log.Options{ReportTimestamp: false}))
}

func TestPublishSuccess(t *testing.T) {
	adapter := &fakeAdapter{handles: []*fakeHandle{
		{pollsUntilDone: 5},
		{pollsUntilDone: 0},
		{pollsUntilDone: 3},
	}}
	var out bytes.Buffer
	req := testRequest(10*mib, 1536, 700*mib)

	result, err := newTestPublisher(adapter, &out).Publish(testContext(), req)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if result.State != StateCompleted || result.Session.State != StateCompleted {
		t.Fatalf("state = %v", result.State)
	}
	if result.Session.TotalUploaded != req.TotalSize() {
		t.Fatalf("uploaded %d, want %d", result.Session.TotalUploaded, req.TotalSize())
	}
	if len(result.Uploaded) != 3 || len(adapter.uploads) != 3 {
		t.Fatalf("uploaded %d files with %d adapter calls", len(result.Uploaded), len(adapter.uploads))
	}
	if result.Session.ID == "" {
		t.Fatal("session should carry an id")
	}

	text := out.String()
	for _, want := range []string{
		"Creating empty release... Done!",
		"Uploading file 1/3: a.img",
		"File 1/3: [",
		"✓ File 1/3 completed: a.img",
		"✓ File 3/3 completed: c.img",
		"Overall: 100.0% complete",
		"All 3 files uploaded successfully!",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestPublishReleaseCreationFailed(t *testing.T) {
	adapter := &fakeAdapter{createErr: &release.CommandError{
		Args:     []string{"gh", "release", "create"},
		ExitCode: 1,
		Output:   "HTTP 422: Validation Failed",
	}}
	var out bytes.Buffer

	result, err := newTestPublisher(adapter, &out).Publish(testContext(), testRequest(mib))
	if !errors.Is(err, ErrReleaseCreationFailed) {
		t.Fatalf("expected ErrReleaseCreationFailed, got %v", err)
	}
	if result.State != StateFailed {
		t.Fatalf("state = %v", result.State)
	}
	if result.Diagnostic != "HTTP 422: Validation Failed" {
		t.Fatalf("diagnostic = %q", result.Diagnostic)
	}
	if len(adapter.uploads) != 0 {
		t.Fatal("no upload may start after release creation failed")
	}
}

func TestPublishFirstUploadFails(t *testing.T) {
	adapter := &fakeAdapter{handles: []*fakeHandle{
		{pollsUntilDone: 2, exitCode: 1, output: "asset upload failed"},
		{},
	}}
	var out bytes.Buffer

	result, err := newTestPublisher(adapter, &out).Publish(testContext(), testRequest(mib, mib))
	if !errors.Is(err, ErrFileUploadFailed) {
		t.Fatalf("expected ErrFileUploadFailed, got %v", err)
	}
	var uploadErr *FileUploadError
	if !errors.As(err, &uploadErr) || uploadErr.Index != 0 || uploadErr.Diagnostic != "asset upload failed" {
		t.Fatalf("unexpected error %#v", err)
	}
	if len(adapter.uploads) != 1 {
		t.Fatalf("adapter upload calls = %d, want 1", len(adapter.uploads))
	}
	if result.State != StateFailed || result.Session.TotalUploaded != 0 {
		t.Fatalf("state %v, uploaded %d", result.State, result.Session.TotalUploaded)
	}
	if !strings.Contains(out.String(), "Error uploading file a.img: asset upload failed") {
		t.Fatalf("diagnostic not printed: %q", out.String())
	}
}

func TestPublishInterruptedMidSession(t *testing.T) {
	ctx, cancel := context.WithCancel(testContext())
	defer cancel()

	adapter := &fakeAdapter{
		handles: []*fakeHandle{
			{pollsUntilDone: 1},
			{pollsUntilDone: 1 << 20},
			{},
		},
		onUpload: func(index int) {
			if index == 1 {
				cancel()
			}
		},
	}
	var out bytes.Buffer
	req := testRequest(3*mib, 5*mib, 7*mib)

	result, err := newTestPublisher(adapter, &out).Publish(ctx, req)
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted, got %v", err)
	}
	if !adapter.handles[1].killed {
		t.Fatal("in-flight upload was not killed")
	}
	if result.State != StateInterrupted {
		t.Fatalf("state = %v", result.State)
	}
	if result.Session.TotalUploaded != 3*mib {
		t.Fatalf("uploaded %d, want only the first file", result.Session.TotalUploaded)
	}
	if len(adapter.uploads) != 2 {
		t.Fatalf("remaining files must not be attempted, got %d uploads", len(adapter.uploads))
	}
	if !strings.Contains(out.String(), "Process interrupted by user") {
		t.Fatal("interruption notice missing")
	}
}

func TestPublishRendersMonotonicEstimates(t *testing.T) {
	adapter := &fakeAdapter{handles: []*fakeHandle{{pollsUntilDone: 400}}}
	var out bytes.Buffer

	_, err := newTestPublisher(adapter, &out).Publish(testContext(), testRequest(500*mib))
	if err != nil {
		t.Fatal(err)
	}

	var last float64
	frames := 0
	for _, chunk := range strings.Split(out.String(), "\r") {
		i := strings.Index(chunk, "] ")
		if !strings.HasPrefix(chunk, "File 1/1: [") || i < 0 {
			continue
		}
		fields := strings.Fields(chunk[i+2:])
		pct := strings.TrimSuffix(fields[0], "%")
		v, err := strconv.ParseFloat(pct, 64)
		if err != nil {
			t.Fatalf("bad percentage %q in %q", pct, chunk)
		}
		if v < last {
			t.Fatalf("percentage went backwards: %v after %v", v, last)
		}
		if v > 99.9 {
			t.Fatalf("percentage %v above cap", v)
		}
		last = v
		frames++
	}
	if frames == 0 {
		t.Fatal("no progress frames rendered")
	}
}

func TestStateTerminal(t *testing.T) {
	for _, s := range []State{StateCompleted, StateFailed, StateInterrupted} {
		if !s.Terminal() {
			t.Errorf("%v should be terminal", s)
		}
	}
	for _, s := range []State{StateInit, StateCreatingRelease, StateUploadingFile, StateFileDone} {
		if s.Terminal() {
			t.Errorf("%v should not be terminal", s)
		}
	}
}
