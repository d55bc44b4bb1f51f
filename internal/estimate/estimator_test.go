package estimate

import (
	"math"
	"testing"
	"time"
)

func TestBaseSpeedFor(t *testing.T) {
	m := DefaultModel()
	if got := m.BaseSpeedFor(500 * mib); got != 3*mib {
		t.Fatalf("small file speed = %v", got)
	}
	if got := m.BaseSpeedFor(gib); got != 3*mib {
		t.Fatalf("exactly 1 GiB should use the base speed, got %v", got)
	}
	if got := m.BaseSpeedFor(gib + 1); got != 2*mib {
		t.Fatalf("large file speed = %v", got)
	}
}

func TestEstimateAtZeroElapsed(t *testing.T) {
	e := Compute(500*mib, 0, 3*mib, 0)
	if e.Bytes != 0 {
		t.Fatalf("expected 0 bytes at start, got %v", e.Bytes)
	}
	if e.Percentage != 0 || e.Speed != 0 {
		t.Fatalf("expected zero percentage and speed, got %v / %v", e.Percentage, e.Speed)
	}
	if e.ETAKnown {
		t.Fatal("ETA must be unknown without a speed")
	}
	if e.State != Starting {
		t.Fatalf("state = %v", e.State)
	}
}

func TestEstimateAfterOneMinute(t *testing.T) {
	e := Compute(500*mib, 60*time.Second, 3*mib, 0)
	if e.AdaptiveSpeed != 1.5*mib {
		t.Fatalf("adaptive speed = %v, want %v", e.AdaptiveSpeed, 1.5*mib)
	}
	if e.Bytes != 90*mib {
		t.Fatalf("bytes = %v, want %v", e.Bytes, 90*mib)
	}
	if math.Abs(e.Percentage-18) > 1e-9 {
		t.Fatalf("percentage = %v, want 18", e.Percentage)
	}
	if e.State != Uploading {
		t.Fatalf("state = %v", e.State)
	}
	if !e.ETAKnown {
		t.Fatal("expected a known ETA")
	}
	// 410 MiB left at 1.5 MiB/s average, plus 10%
	secs := 410.0 / 1.5 * 1.1
	want := time.Duration(secs * float64(time.Second))
	if diff := e.ETA - want; diff > time.Millisecond || diff < -time.Millisecond {
		t.Fatalf("eta = %v, want %v", e.ETA, want)
	}
}

func TestSpeedFloorsAfterDecayWindow(t *testing.T) {
	e := Compute(10*gib, 10*time.Minute, 2*mib, 0)
	if e.AdaptiveSpeed != 1*mib {
		t.Fatalf("speed should stay at half the base speed, got %v", e.AdaptiveSpeed)
	}
}

func TestEstimateIsMonotonic(t *testing.T) {
	m := DefaultModel()
	size := uint64(700 * mib)
	base := m.BaseSpeedFor(size)

	var last float64
	for s := 0; s <= 600; s++ {
		e := m.Estimate(size, time.Duration(s)*time.Second, base, last)
		if e.Bytes < last {
			t.Fatalf("estimate regressed at %ds: %v < %v", s, e.Bytes, last)
		}
		if e.Percentage < 0 || e.Percentage > 99.9 {
			t.Fatalf("percentage out of range at %ds: %v", s, e.Percentage)
		}
		last = e.Bytes
	}
}

func TestEstimateHonoursPreviousValue(t *testing.T) {
	// A higher previous estimate must win over a smaller instantaneous value.
	e := Compute(100*mib, time.Second, 3*mib, 50*mib)
	if e.Bytes != 50*mib {
		t.Fatalf("bytes = %v, want previous estimate", e.Bytes)
	}
}

func TestPercentageCappedBelowCompletion(t *testing.T) {
	e := Compute(mib, time.Hour, 3*mib, 0)
	if e.Bytes != mib {
		t.Fatalf("bytes should saturate at file size, got %v", e.Bytes)
	}
	if e.Percentage != 99.9 {
		t.Fatalf("percentage = %v, want 99.9", e.Percentage)
	}
	if e.State != Finalizing {
		t.Fatalf("state = %v", e.State)
	}
	if !e.ETAKnown || e.ETA != 0 {
		t.Fatalf("expected zero remaining time, got %v (known %v)", e.ETA, e.ETAKnown)
	}
}

func TestZeroSizeFile(t *testing.T) {
	e := Compute(0, 5*time.Second, 3*mib, 0)
	if e.Bytes != 0 || e.Percentage != 0 {
		t.Fatalf("unexpected estimate for empty file: %+v", e)
	}
}

func TestClassify(t *testing.T) {
	cases := map[float64]UploadState{
		0:    Starting,
		0.99: Starting,
		1:    Uploading,
		79.9: Uploading,
		80:   Finalizing,
		99.9: Finalizing,
	}
	for pct, want := range cases {
		if got := Classify(pct); got != want {
			t.Errorf("Classify(%v) = %v, want %v", pct, got, want)
		}
	}
	if Finalizing.String() != "Finalizing" {
		t.Fatalf("unexpected label %q", Finalizing.String())
	}
}
