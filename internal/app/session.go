package app

import (
	"errors"
	"fmt"
	"time"

	"romrelease/pkg/types"

	"github.com/rs/xid"
)

var (
	ErrReleaseCreationFailed = errors.New("failed to create release")
	ErrFileUploadFailed      = errors.New("failed to upload file")
	ErrInterrupted           = errors.New("interrupted by user")
)

// State is the lifecycle position of a publish session
type State int

const (
	StateInit State = iota
	StateCreatingRelease
	StateUploadingFile
	StateFileDone
	StateCompleted
	StateFailed
	StateInterrupted
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateCreatingRelease:
		return "creating_release"
	case StateUploadingFile:
		return "uploading_file"
	case StateFileDone:
		return "file_done"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateInterrupted
}

// Session tracks one publish run. TotalUploaded only counts files whose
// upload finished successfully.
type Session struct {
	ID            string
	TotalSize     uint64
	TotalUploaded uint64
	StartTime     time.Time
	CurrentFile   int // 0-based index of the file in flight
	State         State
}

func newSession(req types.ReleaseRequest, now time.Time) *Session {
	return &Session{
		ID:        xid.New().String(),
		TotalSize: req.TotalSize(),
		StartTime: now,
		State:     StateInit,
	}
}

// FileProgress is the estimator state of the file in flight
type FileProgress struct {
	StartTime     time.Time
	LastEstimate  float64 // bytes, never decreases
	AdaptiveSpeed float64
	BaseSpeed     float64
}

// Result is the outcome of Publish
type Result struct {
	Session    *Session
	State      State
	Uploaded   []types.FileRef
	Diagnostic string // raw release CLI output of the failing step
}

// FileUploadError reports the upload that aborted a session
type FileUploadError struct {
	Index      int
	Path       string
	Diagnostic string
}

func (e *FileUploadError) Error() string {
	return fmt.Sprintf("%s %d (%s): %s", ErrFileUploadFailed, e.Index+1, e.Path, e.Diagnostic)
}

func (e *FileUploadError) Unwrap() error {
	return ErrFileUploadFailed
}
