package release

import (
	"strconv"
	"strings"

	"romrelease/pkg/types"
)

// FormatNotes turns note lines into a "- " bulleted list. Blank lines are
// dropped; when nothing is left, fallback is returned.
func FormatNotes(lines []string, fallback string) string {
	var bullets []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		bullets = append(bullets, "- "+line)
	}
	if len(bullets) == 0 {
		return fallback
	}
	return strings.Join(bullets, "\n")
}

// CreateCommand renders the one-shot gh invocation equivalent to publishing
// req, for display before confirmation
func CreateCommand(ghPath, repo string, req types.ReleaseRequest) string {
	if ghPath == "" {
		ghPath = "gh"
	}
	args := []string{ghPath, "release", "create", req.Tag}
	args = append(args, req.Paths()...)
	args = append(args, "--title", req.Title, "--notes", req.Notes)
	if repo != "" {
		args = append(args, "--repo", repo)
	}

	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = quoteArg(a)
	}
	return strings.Join(quoted, " ")
}

func quoteArg(a string) string {
	if a == "" || strings.ContainsAny(a, " \t\n\"'\\$`") {
		return strconv.Quote(a)
	}
	return a
}
