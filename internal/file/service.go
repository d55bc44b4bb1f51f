package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"romrelease/pkg/types"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

// Artifacts holds discovered files per extension, in configuration order
type Artifacts struct {
	Exts  []string
	ByExt map[string][]string
}

// Of returns the files discovered for ext
func (a Artifacts) Of(ext string) []string {
	return a.ByExt[ext]
}

// All returns every discovered file, grouped by extension in order
func (a Artifacts) All() []string {
	var all []string
	for _, ext := range a.Exts {
		all = append(all, a.ByExt[ext]...)
	}
	return all
}

// Empty reports whether nothing was discovered
func (a Artifacts) Empty() bool {
	return len(a.All()) == 0
}

// fileService implements Service on the local filesystem
type fileService struct {
	progress io.Writer // hashing progress bar output
}

// NewFileService creates a new file service. progress receives the checksum
// progress bar and defaults to stderr.
func NewFileService(progress io.Writer) Service {
	if progress == nil {
		progress = os.Stderr
	}
	return &fileService{progress: progress}
}

// Discover finds regular files named *.<ext> directly inside dir
func (f *fileService) Discover(ctx context.Context, dir string, exts []string) (Artifacts, error) {
	logger := log.FromContext(ctx)
	found := Artifacts{ByExt: make(map[string][]string, len(exts))}

	for _, ext := range exts {
		ext = strings.TrimPrefix(ext, ".")
		matches, err := filepath.Glob(filepath.Join(dir, "*."+ext))
		if err != nil {
			return Artifacts{}, fmt.Errorf("failed to search for *.%s files: %w", ext, err)
		}

		var files []string
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			files = append(files, m)
		}
		sort.Strings(files)

		found.Exts = append(found.Exts, ext)
		found.ByExt[ext] = files
		logger.Debug("discovered artifacts", "ext", ext, "count", len(files))
	}
	return found, nil
}

// Resolve stats each path once
func (f *fileService) Resolve(ctx context.Context, paths []string) ([]types.FileRef, error) {
	logger := log.FromContext(ctx)
	refs := make([]types.FileRef, 0, len(paths))

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to get file info: %w", err)
		}
		if !info.Mode().IsRegular() {
			return nil, fmt.Errorf("not a regular file: %s", p)
		}
		ref := types.FileRef{
			Path: p,
			Name: info.Name(),
			Size: uint64(info.Size()),
		}
		logger.Debug("resolved artifact", "name", ref.Name, "size", humanize.IBytes(ref.Size))
		refs = append(refs, ref)
	}
	return refs, nil
}

// expectedMIME lists the content types an extension is expected to carry.
// Extensions not listed here (raw images) are not checked.
var expectedMIME = map[string][]string{
	".zip": {"application/zip"},
	".gz":  {"application/gzip"},
	".xz":  {"application/x-xz"},
	".7z":  {"application/x-7z-compressed"},
}

// Inspect sniffs each artifact and warns when an archive extension does not
// match its content
func (f *fileService) Inspect(ctx context.Context, refs []types.FileRef) {
	logger := log.FromContext(ctx)

	for _, ref := range refs {
		want, ok := expectedMIME[strings.ToLower(filepath.Ext(ref.Path))]
		if !ok {
			continue
		}
		mt, err := mimetype.DetectFile(ref.Path)
		if err != nil {
			logger.Warn("failed to inspect artifact", "file", ref.Name, "error", err)
			continue
		}
		if !matchesAny(mt, want) {
			logger.Warn("artifact content does not match its extension",
				"file", ref.Name, "detected", mt.String())
		}
	}
}

// matchesAny also accepts formats derived from a wanted type (jar is a zip)
func matchesAny(mt *mimetype.MIME, want []string) bool {
	for m := mt; m != nil; m = m.Parent() {
		for _, w := range want {
			if m.Is(w) {
				return true
			}
		}
	}
	return false
}
