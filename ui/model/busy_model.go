package model

import (
	"time"
)

// BusyModel tracks how long the current request has been outstanding and the
// time spent waiting on the backend across the whole run. Presenters feed it
// the loading flag on every tick and poll Values() for the status line.
// The zero value is ready to use.
type BusyModel struct {
	active      bool
	start       time.Time
	last        time.Duration
	accumulated time.Duration
	requests    int
}

// NewBusyModel returns a pointer to a ready-to-use BusyModel.
func NewBusyModel() *BusyModel { return &BusyModel{} }

// OnTick updates the model from the loading flag at now.
func (m *BusyModel) OnTick(loading bool, now time.Time) {
	if m == nil {
		return
	}
	if loading {
		if !m.active { // idle -> loading
			m.active = true
			m.start = now
			m.last = 0
			m.requests++
		}
		m.last = now.Sub(m.start)
	} else if m.active { // loading -> idle
		m.last = now.Sub(m.start)
		m.accumulated += m.last
		m.active = false
	}
}

// Active reports whether a request is being timed.
func (m *BusyModel) Active() bool { return m != nil && m.active }

// Values returns the current (or last) request duration and the total time
// spent waiting, including the ongoing request.
func (m *BusyModel) Values() (current, total time.Duration) {
	if m == nil {
		return 0, 0
	}
	current = m.last
	total = m.accumulated
	if m.active {
		total += current
	}
	return
}

// Requests returns how many requests have been timed.
func (m *BusyModel) Requests() int {
	if m == nil {
		return 0
	}
	return m.requests
}
