package release

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// killWaitDelay bounds how long a killed upload may keep its output pipes
// open through orphaned children
const killWaitDelay = 2 * time.Second

// GhAdapter drives releases through the GitHub CLI
type GhAdapter struct {
	path string // gh executable
	repo string // optional OWNER/REPO
	dir  string // working directory for gh
}

// NewGhAdapter creates an adapter invoking the gh binary at path. repo may be
// empty to let gh infer the repository from dir.
func NewGhAdapter(path, repo, dir string) *GhAdapter {
	if path == "" {
		path = "gh"
	}
	return &GhAdapter{
		path: path,
		repo: repo,
		dir:  dir,
	}
}

func (g *GhAdapter) args(args ...string) []string {
	if g.repo != "" {
		args = append(args, "--repo", g.repo)
	}
	return args
}

func (g *GhAdapter) command(ctx context.Context, args []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, g.path, args...)
	cmd.Dir = g.dir
	return cmd
}

// run executes gh to completion. Non-zero exits come back as *CommandError,
// failures to start as plain errors.
func (g *GhAdapter) run(ctx context.Context, args []string) (string, error) {
	log.FromContext(ctx).Debug("running gh", "args", args)

	cmd := g.command(ctx, args)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	output := strings.TrimSpace(out.String())
	if err == nil {
		return output, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return output, &CommandError{
			Args:     append([]string{g.path}, args...),
			ExitCode: exitErr.ExitCode(),
			Output:   output,
		}
	}
	return output, fmt.Errorf("failed to run %s: %w", g.path, err)
}

// TagExists reports whether a release with tag exists
func (g *GhAdapter) TagExists(ctx context.Context, tag string) (bool, error) {
	_, err := g.run(ctx, g.args("release", "view", tag))
	if err == nil {
		return true, nil
	}
	var ce *CommandError
	if errors.As(err, &ce) {
		return false, nil
	}
	return false, err
}

// CreateRelease creates an empty release
func (g *GhAdapter) CreateRelease(ctx context.Context, tag, title, notes string) (Release, error) {
	out, err := g.run(ctx, g.args("release", "create", tag, "--title", title, "--notes", notes))
	if err != nil {
		return Release{}, err
	}
	return Release{Tag: tag, URL: lastLine(out)}, nil
}

// UploadFile starts `gh release upload`. The process is not bound to ctx:
// callers stop it through the returned handle.
func (g *GhAdapter) UploadFile(ctx context.Context, rel Release, path string) (AsyncHandle, error) {
	args := g.args("release", "upload", rel.Tag, path)
	log.FromContext(ctx).Debug("starting upload", "args", args)

	cmd := exec.Command(g.path, args...)
	cmd.Dir = g.dir
	cmd.WaitDelay = killWaitDelay
	h, err := startProcess(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to start upload of %s: %w", path, err)
	}
	return h, nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
