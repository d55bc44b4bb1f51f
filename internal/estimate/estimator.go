package estimate

import (
	"math"
	"time"
)

const (
	mib = 1024 * 1024
	gib = 1024 * mib
)

// UploadState is a cosmetic label derived from the estimated percentage
type UploadState int

const (
	Starting UploadState = iota
	Uploading
	Finalizing
)

func (s UploadState) String() string {
	switch s {
	case Starting:
		return "Starting"
	case Uploading:
		return "Uploading"
	case Finalizing:
		return "Finalizing"
	default:
		return "Unknown"
	}
}

// Classify maps a percentage to an UploadState
func Classify(percentage float64) UploadState {
	switch {
	case percentage < 1:
		return Starting
	case percentage < 80:
		return Uploading
	default:
		return Finalizing
	}
}

// Model holds the parameters of the time-based throughput heuristic
type Model struct {
	BaseSpeed          float64       // bytes/s for files up to LargeFileThreshold
	LargeFileSpeed     float64       // bytes/s for files above LargeFileThreshold
	LargeFileThreshold uint64        // bytes
	DecayWindow        time.Duration // time until speed reaches DecayFloor
	DecayFloor         float64       // fraction of base speed left after DecayWindow
	PercentCap         float64       // highest percentage reported before completion
	ETAMargin          float64       // multiplier applied to the remaining time
}

// DefaultModel returns the stock heuristic: 3 MB/s (2 MB/s above 1 GB)
// decaying to half over the first minute
func DefaultModel() Model {
	return Model{
		BaseSpeed:          3 * mib,
		LargeFileSpeed:     2 * mib,
		LargeFileThreshold: gib,
		DecayWindow:        60 * time.Second,
		DecayFloor:         0.5,
		PercentCap:         99.9,
		ETAMargin:          1.1,
	}
}

// Estimate is the model output for one poll
type Estimate struct {
	Bytes         float64       // estimated bytes uploaded, never below the previous estimate
	Percentage    float64       // in [0, PercentCap]
	Speed         float64       // average bytes/s since the file started
	AdaptiveSpeed float64       // instantaneous modelled speed
	ETA           time.Duration // remaining time, valid when ETAKnown
	ETAKnown      bool
	State         UploadState
}

// BaseSpeedFor selects the starting speed for a file of the given size
func (m Model) BaseSpeedFor(size uint64) float64 {
	if size > m.LargeFileThreshold {
		return m.LargeFileSpeed
	}
	return m.BaseSpeed
}

// Estimate computes progress for a file of fileSize bytes after elapsed time.
// lastEstimate must be the Bytes of the previous call for the same file (0 on
// the first call).
func (m Model) Estimate(fileSize uint64, elapsed time.Duration, baseSpeed, lastEstimate float64) Estimate {
	secs := elapsed.Seconds()
	if secs < 0 {
		secs = 0
	}

	timeFactor := 1.0
	if m.DecayWindow > 0 {
		timeFactor = math.Min(1, secs/m.DecayWindow.Seconds())
	}
	adaptive := baseSpeed * (1 - timeFactor*(1-m.DecayFloor))

	size := float64(fileSize)
	raw := math.Min(size, adaptive*secs)
	bytes := math.Max(lastEstimate, raw)
	if bytes > size {
		bytes = size
	}

	var percentage float64
	if fileSize > 0 {
		percentage = math.Min(m.PercentCap, bytes/size*100)
	}

	e := Estimate{
		Bytes:         bytes,
		Percentage:    percentage,
		AdaptiveSpeed: adaptive,
		State:         Classify(percentage),
	}
	if secs > 0 {
		e.Speed = bytes / secs
	}
	if e.Speed > 0 {
		remaining := (size - bytes) / e.Speed * m.ETAMargin
		e.ETA = time.Duration(remaining * float64(time.Second))
		e.ETAKnown = true
	}
	return e
}

// Compute runs the default model
func Compute(fileSize uint64, elapsed time.Duration, baseSpeed, lastEstimate float64) Estimate {
	return DefaultModel().Estimate(fileSize, elapsed, baseSpeed, lastEstimate)
}
