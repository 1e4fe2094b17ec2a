// Package delta converts cumulative counter readings into per-interval increments.
package delta

// Counter tracks the last seen reading of one cumulative stat.
//
// A Counter is not safe for concurrent use; it is owned by a single aggregator.
type Counter struct {
	last    int64
	hasLast bool
}

// Process feeds a raw reading and returns the increment since the previous one.
//
// ok is false when no delta is available: on the first reading, when raw is nil
// (no reading this cycle), or when the reading went down because the upstream
// counter was reset. A nil raw leaves the stored reading untouched; any other
// reading always replaces it, so a reset is absorbed on the next cycle.
func (c *Counter) Process(raw *int64) (delta int64, ok bool) {
	if raw == nil {
		return 0, false
	}

	prev, had := c.last, c.hasLast
	c.last, c.hasLast = *raw, true

	if !had {
		return 0, false
	}

	d := *raw - prev
	if d < 0 {
		return 0, false
	}
	return d, true
}
