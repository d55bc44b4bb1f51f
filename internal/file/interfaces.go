package file

import (
	"context"

	"romrelease/pkg/types"
)

// Service handles artifact discovery and preparation for a release
type Service interface {
	// Discover lists artifacts in dir grouped by extension
	Discover(ctx context.Context, dir string, exts []string) (Artifacts, error)

	// Resolve stats paths once and returns their size snapshots
	Resolve(ctx context.Context, paths []string) ([]types.FileRef, error)

	// Inspect warns about artifacts whose content does not match their extension
	Inspect(ctx context.Context, refs []types.FileRef)

	// WriteChecksums hashes refs into a SHA256SUMS file in dir
	WriteChecksums(ctx context.Context, dir string, refs []types.FileRef) (types.FileRef, error)
}
