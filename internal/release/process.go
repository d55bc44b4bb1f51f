package release

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"strings"
)

// processHandle is an AsyncHandle over a started command. A goroutine owns
// cmd.Wait and publishes the final status by closing done, so Poll never
// blocks.
type processHandle struct {
	cmd    *exec.Cmd
	output bytes.Buffer
	done   chan struct{}
	status Status
}

func startProcess(cmd *exec.Cmd) (*processHandle, error) {
	h := &processHandle{
		cmd:  cmd,
		done: make(chan struct{}),
	}
	cmd.Stdout = &h.output
	cmd.Stderr = &h.output

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	go h.wait()
	return h, nil
}

func (h *processHandle) wait() {
	err := h.cmd.Wait()

	status := Status{
		Done:   true,
		Output: strings.TrimSpace(h.output.String()),
	}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		status.ExitCode = exitErr.ExitCode()
		if status.ExitCode == 0 {
			status.ExitCode = -1
		}
	default:
		status.ExitCode = -1
		if status.Output == "" {
			status.Output = err.Error()
		}
	}
	h.status = status
	close(h.done)
}

func (h *processHandle) Poll() Status {
	select {
	case <-h.done:
		return h.status
	default:
		return Status{}
	}
}

func (h *processHandle) Kill() error {
	select {
	case <-h.done:
		return nil
	default:
	}
	if err := h.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
