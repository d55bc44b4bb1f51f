package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"romrelease/pkg/utils"
)

// ConsoleUI implements console-based interactive prompts
type ConsoleUI struct {
	in  *utils.LineReader
	out io.Writer
}

// NewConsoleUI creates a console UI reading from in and writing to out.
// Nil arguments default to stdin and stdout.
func NewConsoleUI(in io.Reader, out io.Writer) *ConsoleUI {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleUI{
		in:  utils.NewLineReader(in),
		out: out,
	}
}

// Writer returns the output the console writes to
func (c *ConsoleUI) Writer() io.Writer {
	return c.out
}

// ShowMessage displays a message to the user
func (c *ConsoleUI) ShowMessage(message string) {
	fmt.Fprintln(c.out, message)
}

// Ask prints prompt and waits for one line of input
func (c *ConsoleUI) Ask(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	answer, err := c.in.ReadLine(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return answer, nil
}

// Confirm asks a Y/N question, repeating until the answer is valid
func (c *ConsoleUI) Confirm(ctx context.Context, prompt string) (bool, error) {
	for {
		answer, err := c.Ask(ctx, prompt)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}
		fmt.Fprintln(c.out, "Please enter Y or N")
	}
}

// Choose asks until one of options is entered
func (c *ConsoleUI) Choose(ctx context.Context, prompt string, options []string) (string, error) {
	for {
		answer, err := c.Ask(ctx, prompt)
		if err != nil {
			return "", err
		}
		if slices.Contains(options, answer) {
			return answer, nil
		}
	}
}

// YesNo asks a Y/N question where anything but "y" means no
func (c *ConsoleUI) YesNo(ctx context.Context, prompt string) (bool, error) {
	answer, err := c.Ask(ctx, prompt)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "y"), nil
}
