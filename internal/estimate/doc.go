// Package estimate models upload progress for transports that report none.
//
// The model assumes a fixed starting throughput that decays linearly over a
// window (handshake overhead amortizing, then throttling) down to a floor.
// Estimates are fed back between polls so the reported byte count never
// moves backwards, and the percentage is capped below 100 until the real
// upload reports completion.
//
// # Usage
//
//	m := estimate.DefaultModel()
//	base := m.BaseSpeedFor(size)
//	var last float64
//	for polling {
//	    e := m.Estimate(size, time.Since(start), base, last)
//	    last = e.Bytes
//	}
package estimate
