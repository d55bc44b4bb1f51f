package release

import "context"

// Release identifies a release created on the remote
type Release struct {
	Tag string
	URL string
}

// Status is the result of a non-blocking poll on an upload
type Status struct {
	Done     bool
	ExitCode int
	Output   string // combined diagnostic output, set once Done
}

// Succeeded reports whether the upload finished with exit code 0
func (s Status) Succeeded() bool {
	return s.Done && s.ExitCode == 0
}

// AsyncHandle tracks an upload running out of process
type AsyncHandle interface {
	// Poll returns immediately with the current status
	Poll() Status
	// Kill terminates the upload; it is a no-op once the upload is done
	Kill() error
}

// TagChecker reports whether a release tag is already taken
type TagChecker interface {
	TagExists(ctx context.Context, tag string) (bool, error)
}

// Adapter translates release intents into remote operations
type Adapter interface {
	TagChecker

	// CreateRelease creates a release with no assets attached
	CreateRelease(ctx context.Context, tag, title, notes string) (Release, error)

	// UploadFile starts uploading path to rel and returns without waiting
	UploadFile(ctx context.Context, rel Release, path string) (AsyncHandle, error)
}
