package file

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"romrelease/pkg/types"

	"github.com/charmbracelet/log"
	"github.com/schollz/progressbar/v3"
)

// ChecksumFile is the name of the generated checksum manifest
const ChecksumFile = "SHA256SUMS"

// WriteChecksums hashes every ref into dir/SHA256SUMS ("<hex>  <name>" per
// line, sorted by name) and returns the manifest as a FileRef. Hashing
// progress is real, so it is shown with a byte progress bar.
func (f *fileService) WriteChecksums(ctx context.Context, dir string, refs []types.FileRef) (types.FileRef, error) {
	var total int64
	for _, ref := range refs {
		total += int64(ref.Size)
	}

	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetDescription("Hashing artifacts"),
		progressbar.OptionSetWriter(f.progress),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(20),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionClearOnFinish(),
	)

	sums := make(map[string]string, len(refs))
	for _, ref := range refs {
		sum, err := hashFile(ctx, ref.Path, bar)
		if err != nil {
			_ = bar.Exit()
			return types.FileRef{}, err
		}
		sums[ref.Name] = sum
	}
	_ = bar.Finish()

	names := make([]string, 0, len(sums))
	for name := range sums {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s  %s\n", sums[name], name)
	}

	path := filepath.Join(dir, ChecksumFile)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return types.FileRef{}, fmt.Errorf("failed to write %s: %w", ChecksumFile, err)
	}
	log.FromContext(ctx).Info("wrote checksum manifest", "path", path, "entries", len(names))

	return types.FileRef{
		Path: path,
		Name: ChecksumFile,
		Size: uint64(b.Len()),
	}, nil
}

func hashFile(ctx context.Context, path string, progress io.Writer) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(h, progress), &ctxReader{ctx: ctx, r: file}); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", filepath.Base(path), err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ctxReader stops a long copy once ctx is cancelled
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
