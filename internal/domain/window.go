package domain

import "time"

// Window is a trailing N-month lookback ending at (and including) the
// anchor month. Months are always normalised to the first of the month.
type Window struct {
	Anchor time.Time
	Months int
}

// FirstOfMonth truncates t to the first day of its month in UTC.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func NewWindow(anchor time.Time, months int) Window {
	return Window{Anchor: FirstOfMonth(anchor), Months: months}
}

// Start is the earliest month inside the window.
func (w Window) Start() time.Time {
	return w.Anchor.AddDate(0, -(w.Months - 1), 0)
}

// End is the latest month inside the window (the anchor itself).
func (w Window) End() time.Time { return w.Anchor }

func (w Window) Contains(m time.Time) bool {
	m = FirstOfMonth(m)
	return !m.Before(w.Start()) && !m.After(w.End())
}

// MonthsIn lists the window's months oldest first.
func (w Window) MonthsIn() []time.Time {
	out := make([]time.Time, 0, w.Months)
	for m := w.Start(); !m.After(w.End()); m = m.AddDate(0, 1, 0) {
		out = append(out, m)
	}
	return out
}

// Following lists the n months immediately after the window.
func (w Window) Following(n int) []time.Time {
	out := make([]time.Time, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, w.Anchor.AddDate(0, i, 0))
	}
	return out
}
