package core

import (
	"time"
)

// TimeWindow is the (start, end) timestamp span over which an anomaly
// holds. Start never exceeds End; a single-point window has Start == End.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeWindow creates a window, normalizing order so Start <= End.
func NewTimeWindow(start, end time.Time) TimeWindow {
	if end.Before(start) {
		start, end = end, start
	}
	return TimeWindow{Start: start, End: end}
}

// SingleWindow creates a window covering a single instant.
func SingleWindow(t time.Time) TimeWindow {
	return TimeWindow{Start: t, End: t}
}

// IsSingle reports whether the window covers exactly one instant.
func (w TimeWindow) IsSingle() bool {
	return w.Start.Equal(w.End)
}

// Duration returns the window span.
func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Contains reports whether t falls inside the window (inclusive).
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Touches reports whether two windows overlap or sit within gap of each
// other. Used by the window resolver to decide mergeability.
func (w TimeWindow) Touches(o TimeWindow, gap time.Duration) bool {
	if w.Start.After(o.Start) {
		w, o = o, w
	}
	return !o.Start.After(w.End.Add(gap))
}

// Union returns the smallest window spanning both.
func (w TimeWindow) Union(o TimeWindow) TimeWindow {
	out := w
	if o.Start.Before(out.Start) {
		out.Start = o.Start
	}
	if o.End.After(out.End) {
		out.End = o.End
	}
	return out
}
