package compositor

import "time"

const fpsLogInterval = 10 * time.Second

// fpsTracker counts leaf updates against the time spent handling them.
// The name is loose: a "frame" here is one routed update.
type fpsTracker struct {
	updates int
	busy    time.Duration
	lastLog time.Time
}

func (f *fpsTracker) rate() float64 {
	if f.busy <= 0 {
		return 0
	}
	return float64(f.updates) / f.busy.Seconds()
}

// due reports whether a rate line should be logged at now.
func (f *fpsTracker) due(now time.Time) bool {
	if f.lastLog.IsZero() {
		f.lastLog = now
		return false
	}
	if now.Sub(f.lastLog) <= fpsLogInterval {
		return false
	}
	f.lastLog = now
	return true
}
