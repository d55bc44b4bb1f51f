package release

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/charmbracelet/log"
)

// tagPattern captures "<name>-<version>-<digits>" from the start of a build
// artifact name, e.g. "lineage-21.0-20240101" from
// "lineage-21.0-20240101-UNOFFICIAL-devicename.zip".
var tagPattern = regexp.MustCompile(`^(.*?-.*?-\d+)`)

// ExtractTag infers a release tag from an artifact file name
func ExtractTag(filename string) (string, bool) {
	m := tagPattern.FindStringSubmatch(filepath.Base(filename))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// UniqueTag returns tag when it is unused, otherwise the first free
// "<tag>-vN" with N starting at 2
func UniqueTag(ctx context.Context, checker TagChecker, tag string) (string, error) {
	exists, err := checker.TagExists(ctx, tag)
	if err != nil {
		return "", fmt.Errorf("failed to check tag %q: %w", tag, err)
	}
	if !exists {
		return tag, nil
	}

	logger := log.FromContext(ctx)
	logger.Warn("release tag already exists", "tag", tag)

	for version := 2; ; version++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate := fmt.Sprintf("%s-v%d", tag, version)
		exists, err := checker.TagExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check tag %q: %w", candidate, err)
		}
		if !exists {
			logger.Debug("using unique tag", "tag", candidate)
			return candidate, nil
		}
	}
}
