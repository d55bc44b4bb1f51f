package ui

import (
	"context"
	"io"
)

// Prompter defines the interface for user interactions
type Prompter interface {
	// Writer returns the output prompts are written to
	Writer() io.Writer

	// ShowMessage displays a message to the user
	ShowMessage(message string)

	// Ask prints prompt and returns the trimmed answer
	Ask(ctx context.Context, prompt string) (string, error)

	// Confirm asks a Y/N question until a valid answer is given
	Confirm(ctx context.Context, prompt string) (bool, error)

	// YesNo asks a Y/N question where anything but "y" means no
	YesNo(ctx context.Context, prompt string) (bool, error)

	// Choose asks until one of the given options is entered
	Choose(ctx context.Context, prompt string, options []string) (string, error)
}
