package presenter

import (
	"log/slog"

	"github.com/soocke/predict-client/domain/inference"
	"github.com/soocke/predict-client/domain/submission"
	"github.com/soocke/predict-client/ui/images"
	"github.com/soocke/predict-client/ui/model"
)

// Maximum overlay image size; larger heatmaps are scaled down for display.
const (
	maxViewerW = 1200
	maxViewerH = 800
)

// ResultSource looks up a displayed result by gallery index.
type ResultSource interface {
	Result(i int) (inference.ResultRecord, bool)
}

// ViewerView is the enlarged-image overlay.
type ViewerView interface {
	Show(title string, png []byte)
	Hide()
}

// ViewerPresenter opens and closes the overlay.
type ViewerPresenter struct {
	model   *model.ViewerModel
	results ResultSource
	view    ViewerView
	logger  *slog.Logger
}

// NewViewerPresenter returns a new ViewerPresenter.
func NewViewerPresenter(m *model.ViewerModel, results ResultSource, view ViewerView, logger *slog.Logger) *ViewerPresenter {
	return &ViewerPresenter{model: m, results: results, view: view, logger: logger}
}

// OpenResult shows the heatmap of result i. Results without a heatmap are ignored.
func (p *ViewerPresenter) OpenResult(i int) {
	if p == nil || p.results == nil || p.model == nil {
		return
	}
	rec, ok := p.results.Result(i)
	if !ok || !rec.HasHeatmap() {
		return
	}
	img, err := images.Decode(rec.Heatmap)
	if err != nil {
		if p.logger != nil {
			p.logger.Warn("heatmap decode", "file", rec.Filename, "error", err)
		}
		return
	}
	if !p.model.Open(rec.Filename, rec.Heatmap) {
		return
	}
	if p.view != nil {
		p.view.Show(rec.Filename, images.EncodePNG(images.ScaleToFit(img, maxViewerW, maxViewerH)))
	}
}

// Close hides the overlay. Closing an already closed overlay does nothing.
func (p *ViewerPresenter) Close() {
	if p == nil || p.model == nil {
		return
	}
	if p.model.Close() && p.view != nil {
		p.view.Hide()
	}
}

// OnState closes the overlay once the results it was opened from are gone.
func (p *ViewerPresenter) OnState(_, next submission.State) {
	if next.Phase != submission.PhaseSucceeded {
		p.Close()
	}
}
