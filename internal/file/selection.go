package file

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/duke-git/lancet/v2/slice"
)

// ErrInvalidSelection is returned when a selection cannot be parsed
var ErrInvalidSelection = errors.New("invalid selection")

// Mode selects which discovered artifacts to release
type Mode int

const (
	ModeAll Mode = iota + 1
	ModeImages
	ModeArchives
	ModeIndividual
)

// Select returns the files for a non-individual mode. ModeAll lists archives
// first, then images, then any extra extensions.
func Select(a Artifacts, archiveExt, imageExt string, mode Mode) []string {
	switch mode {
	case ModeImages:
		return a.Of(imageExt)
	case ModeArchives:
		return a.Of(archiveExt)
	default:
		return a.All()
	}
}

// ParseSelection resolves comma-separated 1-based numbers against files.
// Out-of-range numbers are skipped and repeated numbers count once;
// non-numeric input is an error.
func ParseSelection(input string, files []string) ([]string, error) {
	var indices []int
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidSelection, part)
		}
		indices = append(indices, n-1)
	}

	var selected []string
	for _, idx := range slice.Unique(indices) {
		if idx >= 0 && idx < len(files) {
			selected = append(selected, files[idx])
		}
	}
	return selected, nil
}
