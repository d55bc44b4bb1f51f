package utils

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestLineReaderTrimsAndReportsEOF(t *testing.T) {
	r := NewLineReader(strings.NewReader("  first \nsecond\n"))
	ctx := context.Background()

	line, err := r.ReadLine(ctx)
	if err != nil || line != "first" {
		t.Fatalf("expected %q, got %q (err %v)", "first", line, err)
	}
	line, err = r.ReadLine(ctx)
	if err != nil || line != "second" {
		t.Fatalf("expected %q, got %q (err %v)", "second", line, err)
	}
	if _, err := r.ReadLine(ctx); !errors.Is(err, ErrInputClosed) {
		t.Fatalf("expected ErrInputClosed, got %v", err)
	}
}

func TestLineReaderHonoursCancellation(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	r := NewLineReader(pr)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.ReadLine(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
