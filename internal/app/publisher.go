package app

import (
	"context"
	"fmt"
	"time"

	"romrelease/internal/estimate"
	"romrelease/internal/release"
	"romrelease/internal/reporter"
	"romrelease/internal/ui"
	"romrelease/pkg/types"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

// Publisher creates a release and uploads its files one at a time, polling
// each upload and rendering estimated progress while it runs
type Publisher struct {
	adapter      release.Adapter
	renderer     *ui.ProgressRenderer
	reporter     *reporter.SummaryReporter
	model        estimate.Model
	pollInterval time.Duration
	now          func() time.Time
}

// NewPublisher creates a new publisher
func NewPublisher(
	adapter release.Adapter,
	renderer *ui.ProgressRenderer,
	rep *reporter.SummaryReporter,
	model estimate.Model,
	pollInterval time.Duration,
) *Publisher {
	if pollInterval <= 0 {
		pollInterval = 100 * time.Millisecond
	}
	return &Publisher{
		adapter:      adapter,
		renderer:     renderer,
		reporter:     rep,
		model:        model,
		pollInterval: pollInterval,
		now:          time.Now,
	}
}

// WithClock replaces the wall clock used for elapsed time
func (p *Publisher) WithClock(now func() time.Time) *Publisher {
	p.now = now
	return p
}

// Publish runs a whole session. The error is nil only when every file was
// uploaded; it wraps ErrReleaseCreationFailed, ErrFileUploadFailed (as a
// *FileUploadError) or ErrInterrupted otherwise.
func (p *Publisher) Publish(ctx context.Context, req types.ReleaseRequest) (*Result, error) {
	session := newSession(req, p.now())
	logger := log.FromContext(ctx).With("session", session.ID)
	ctx = log.WithContext(ctx, logger)

	result := &Result{Session: session}
	count := len(req.Files)

	logger.Info("publishing release", "tag", req.Tag, "files", count, "size", humanize.IBytes(session.TotalSize))
	p.reporter.SessionStart(session.TotalSize, count)

	session.State = StateCreatingRelease
	p.reporter.CreatingRelease()
	rel, err := p.adapter.CreateRelease(ctx, req.Tag, req.Title, req.Notes)
	if err != nil {
		if ctx.Err() != nil {
			p.reporter.Interrupted()
			return p.finish(result, StateInterrupted, ""), ErrInterrupted
		}
		diag := release.Diagnostic(err)
		p.reporter.ReleaseFailed(diag)
		logger.Error("release creation failed", "tag", req.Tag, "error", err)
		return p.finish(result, StateFailed, diag), fmt.Errorf("%w: %s", ErrReleaseCreationFailed, diag)
	}
	p.reporter.ReleaseCreated()
	logger.Debug("release created", "tag", rel.Tag, "url", rel.URL)

	for i, ref := range req.Files {
		session.CurrentFile = i
		session.State = StateUploadingFile

		status, elapsed, err := p.uploadOne(ctx, rel, i, count, ref)
		if err != nil {
			if ctx.Err() != nil {
				p.reporter.Interrupted()
				logger.Warn("upload interrupted", "file", ref.Name, "uploaded", humanize.IBytes(session.TotalUploaded))
				return p.finish(result, StateInterrupted, ""), ErrInterrupted
			}
			diag := release.Diagnostic(err)
			p.reporter.FileFailed(ref.Name, diag)
			return p.finish(result, StateFailed, diag), &FileUploadError{Index: i, Path: ref.Path, Diagnostic: diag}
		}
		if !status.Succeeded() {
			p.reporter.FileFailed(ref.Name, status.Output)
			logger.Error("upload failed", "file", ref.Name, "exit_code", status.ExitCode)
			return p.finish(result, StateFailed, status.Output), &FileUploadError{Index: i, Path: ref.Path, Diagnostic: status.Output}
		}

		session.State = StateFileDone
		session.TotalUploaded += ref.Size
		result.Uploaded = append(result.Uploaded, ref)

		p.reporter.FileCompleted(i, count, ref.Name, ref.Size, elapsed)
		p.reporter.Overall(session.TotalUploaded, session.TotalSize, p.now().Sub(session.StartTime))
		logger.Debug("file uploaded", "file", ref.Name, "elapsed", elapsed)
	}

	p.reporter.SessionCompleted(count, session.TotalSize, p.now().Sub(session.StartTime))
	logger.Info("release published", "tag", rel.Tag, "url", rel.URL)
	return p.finish(result, StateCompleted, ""), nil
}

// uploadOne starts the upload of ref and polls it until it exits, returning
// the final status and the time it took. A non-nil error means the upload
// could not be started or ctx was cancelled, in which case the process has
// been killed.
func (p *Publisher) uploadOne(ctx context.Context, rel release.Release, index, count int, ref types.FileRef) (release.Status, time.Duration, error) {
	logger := log.FromContext(ctx)
	p.reporter.FileStart(index, count, ref.Name, ref.Size)

	handle, err := p.adapter.UploadFile(ctx, rel, ref.Path)
	if err != nil {
		return release.Status{}, 0, err
	}

	start := p.now()
	progress := FileProgress{
		StartTime: start,
		BaseSpeed: p.model.BaseSpeedFor(ref.Size),
	}
	progress.AdaptiveSpeed = progress.BaseSpeed
	p.renderer.Reset(start)

	for {
		status := handle.Poll()
		if status.Done {
			if status.Succeeded() {
				p.renderer.Finish()
			}
			return status, p.now().Sub(start), nil
		}

		now := p.now()
		if p.renderer.Due(now) {
			if elapsed := now.Sub(progress.StartTime); elapsed > 0 {
				est := p.model.Estimate(ref.Size, elapsed, progress.BaseSpeed, progress.LastEstimate)
				progress.LastEstimate = est.Bytes
				progress.AdaptiveSpeed = est.AdaptiveSpeed
				p.renderer.Draw(now, ui.Frame{
					FileIndex: index,
					FileCount: count,
					FileSize:  ref.Size,
					Estimate:  est,
				})
			} else {
				p.renderer.Skip(now)
			}
		}

		select {
		case <-ctx.Done():
			if err := handle.Kill(); err != nil {
				logger.Warn("failed to stop upload", "file", ref.Name, "error", err)
			}
			return release.Status{}, 0, ctx.Err()
		case <-time.After(p.pollInterval):
		}
	}
}

func (p *Publisher) finish(result *Result, state State, diagnostic string) *Result {
	result.Session.State = state
	result.State = state
	result.Diagnostic = diagnostic
	return result
}
