package presenter

import (
	"github.com/jonboulle/clockwork"
)

// Drainer applies finished background work on the calling (UI) goroutine.
type Drainer interface{ Drain() bool }

// Loop drives periodic updates from the Tk event loop.
//
// Each Tick applies settled submissions, advances the busy timer and invokes
// the scheduler callback. The zero value is usable (methods are nil-safe).
type Loop struct {
	Settle   Drainer
	Busy     *BusyPresenter
	Clock    clockwork.Clock
	Schedule func()
}

func NewLoop(settle Drainer, busy *BusyPresenter, clock clockwork.Clock, schedule func()) *Loop {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Loop{Settle: settle, Busy: busy, Clock: clock, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	if l.Settle != nil {
		l.Settle.Drain()
	}
	if l.Busy != nil && l.Clock != nil {
		l.Busy.Tick(l.Clock.Now())
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
