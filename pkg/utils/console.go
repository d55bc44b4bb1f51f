package utils

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputClosed is returned once the underlying input reaches EOF
var ErrInputClosed = errors.New("input closed")

// LineReader reads trimmed lines from an input while honouring context
// cancellation. A single goroutine owns the scanner.
type LineReader struct {
	scanner *bufio.Scanner
	once    sync.Once
	lines   chan string
}

// NewLineReader wraps r
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{
		scanner: bufio.NewScanner(r),
		lines:   make(chan string),
	}
}

func (l *LineReader) start() {
	go func() {
		defer close(l.lines)
		for l.scanner.Scan() {
			l.lines <- strings.TrimSpace(l.scanner.Text())
		}
	}()
}

// ReadLine blocks until a line is available or ctx is done
func (l *LineReader) ReadLine(ctx context.Context) (string, error) {
	l.once.Do(l.start)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-l.lines:
		if !ok {
			return "", ErrInputClosed
		}
		return line, nil
	}
}
