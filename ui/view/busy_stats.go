package view

import (
	"fmt"
	"time"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// BusyStats shows how long the current request has been waiting and the
// total time spent waiting on the backend.
type BusyStats interface {
	SetCurrent(d time.Duration)
	SetTotal(d time.Duration)
}

type busyStats struct {
	currentLbl *LabelWidget
	totalLbl   *LabelWidget
}

// NewBusyStats creates the two duration labels at (row, startCol) and (row, startCol+1).
// If parent is nil, labels are positioned relative to the App root.
func NewBusyStats(parent *FrameWidget, row, startCol int) BusyStats {
	s := &busyStats{currentLbl: Label(Width(14)), totalLbl: Label(Width(14))}
	if parent != nil {
		Grid(s.currentLbl, In(parent), Row(row), Column(startCol), Sticky("w"), Padx("0.2m"))
		Grid(s.totalLbl, In(parent), Row(row), Column(startCol+1), Sticky("w"), Padx("0.2m"))
	} else {
		Grid(s.currentLbl, Row(row), Column(startCol), Sticky("w"), Padx("0.2m"))
		Grid(s.totalLbl, Row(row), Column(startCol+1), Sticky("w"), Padx("0.2m"))
	}
	s.currentLbl.Configure(Txt("Request: 00:00"))
	s.totalLbl.Configure(Txt("Waited: 00:00"))
	return s
}

func (s *busyStats) SetCurrent(d time.Duration) {
	if s == nil || s.currentLbl == nil {
		return
	}
	s.currentLbl.Configure(Txt("Request: " + clock(d)))
}

func (s *busyStats) SetTotal(d time.Duration) {
	if s == nil || s.totalLbl == nil {
		return
	}
	s.totalLbl.Configure(Txt("Waited: " + clock(d)))
}

func clock(d time.Duration) string {
	seconds := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
