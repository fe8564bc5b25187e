package presenter

import (
	"time"

	"github.com/soocke/predict-client/ui/model"
)

// LoadingSource reports whether a submission is outstanding.
type LoadingSource interface{ Loading() bool }

// ElapsedView displays how long the current request has been waiting.
type ElapsedView interface {
	SetElapsed(current, total time.Duration)
}

// BusyPresenter feeds the loading flag into the busy model and pushes the
// durations to the view.
type BusyPresenter struct {
	busy    *model.BusyModel
	loading LoadingSource
	view    ElapsedView
}

// NewBusyPresenter returns a new BusyPresenter.
func NewBusyPresenter(busy *model.BusyModel, loading LoadingSource, view ElapsedView) *BusyPresenter {
	return &BusyPresenter{busy: busy, loading: loading, view: view}
}

// Tick advances the busy model and updates the view.
func (p *BusyPresenter) Tick(now time.Time) {
	if p == nil || p.busy == nil || p.loading == nil || p.view == nil {
		return
	}
	p.busy.OnTick(p.loading.Loading(), now)
	cur, total := p.busy.Values()
	p.view.SetElapsed(cur, total)
}
