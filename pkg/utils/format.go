package utils

import (
	"fmt"
	"time"
)

const (
	kib = 1024
	mib = kib * 1024
	gib = mib * 1024
)

// FormatSize formats a byte count with one decimal in binary units
func FormatSize(size uint64) string {
	switch {
	case size < kib:
		return fmt.Sprintf("%d B", size)
	case size < mib:
		return fmt.Sprintf("%.1f KB", float64(size)/kib)
	case size < gib:
		return fmt.Sprintf("%.1f MB", float64(size)/mib)
	default:
		return fmt.Sprintf("%.1f GB", float64(size)/gib)
	}
}

// FormatSpeed formats a bytes-per-second rate
func FormatSpeed(bytesPerSecond float64) string {
	if bytesPerSecond < 0 {
		bytesPerSecond = 0
	}
	return FormatSize(uint64(bytesPerSecond)) + "/s"
}

// FormatTime formats a duration as "42s", "3m 7s" or "1h 2m"
func FormatTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int64(d / time.Second)
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	default:
		return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
	}
}
