package release

import (
	"fmt"
	"strings"
)

// CommandError is returned when the release CLI exits with a non-zero status
type CommandError struct {
	Args     []string
	ExitCode int
	Output   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", strings.Join(e.Args, " "), e.ExitCode)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

// Diagnostic returns the raw CLI output, or the error text when there is none
func Diagnostic(err error) string {
	if err == nil {
		return ""
	}
	if ce, ok := err.(*CommandError); ok && ce.Output != "" {
		return ce.Output
	}
	return err.Error()
}
