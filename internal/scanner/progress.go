package scanner

import "time"

// Progress reports scanning progress.
type Progress struct {
	// CurrentPath is the directory most recently listed.
	CurrentPath string
	// Scanned is the number of directories visited so far.
	Scanned int64
	// Found is the number of empty directories reported so far.
	Found int64
	// Total is the pre-counted number of directories, or 0 when unknown.
	Total int64
	// Errors is the number of directories that could not be listed.
	Errors int64
	// Done marks the final snapshot of a scan.
	Done bool
	// Cancelled marks a final snapshot produced by cancellation.
	Cancelled bool
	// StartTime is when the scan began.
	StartTime time.Time
	// Duration is elapsed time.
	Duration time.Duration
}

// ItemsPerSecond returns the scan rate.
func (p Progress) ItemsPerSecond() float64 {
	if p.Duration.Seconds() == 0 {
		return 0
	}
	return float64(p.Scanned) / p.Duration.Seconds()
}

// Ratio returns Scanned/Total clamped to [0, 1], or -1 when Total is unknown.
func (p Progress) Ratio() float64 {
	if p.Total <= 0 {
		return -1
	}
	r := float64(p.Scanned) / float64(p.Total)
	if r > 1 {
		r = 1
	}
	return r
}
