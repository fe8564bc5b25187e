package presenter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/soocke/predict-client/domain/inference"
	"github.com/soocke/predict-client/domain/submission"
)

// ThumbnailSize is the gallery thumbnail edge in pixels.
const ThumbnailSize = 160

// Submitter starts a submission.
type Submitter interface {
	Submit(ctx context.Context, req submission.Request) error
}

// UploadSource supplies the staged files.
type UploadSource interface {
	Uploads() []inference.Upload
}

// FormSource exposes the user-editable submission inputs.
type FormSource interface {
	Mode() inference.Mode
	FeatureText() string
}

// Thumbnailer renders PNG thumbnails.
type Thumbnailer interface {
	Get(img []byte, size int) ([]byte, error)
}

// ResultItem is one gallery entry.
type ResultItem struct {
	Filename   string
	Prediction string
	Thumbnail  []byte // PNG, nil without heatmap or when it failed to decode
}

// SubmissionView shows loading, status text and the result gallery.
type SubmissionView interface {
	SetLoading(loading bool)
	SetStatus(text string, isError bool)
	SetResults(items []ResultItem)
}

// SubmissionPresenter turns the submit action into a request and mirrors the
// orchestrator state into the view.
type SubmissionPresenter struct {
	orch    Submitter
	uploads UploadSource
	form    FormSource
	thumbs  Thumbnailer
	view    SubmissionView
	logger  *slog.Logger
	ctx     context.Context

	results []inference.ResultRecord
}

// NewSubmissionPresenter returns a new SubmissionPresenter. ctx bounds every
// request the presenter starts.
func NewSubmissionPresenter(ctx context.Context, orch Submitter, uploads UploadSource, form FormSource, thumbs Thumbnailer, view SubmissionView, logger *slog.Logger) *SubmissionPresenter {
	if ctx == nil {
		ctx = context.Background()
	}
	return &SubmissionPresenter{ctx: ctx, orch: orch, uploads: uploads, form: form, thumbs: thumbs, view: view, logger: logger}
}

// Submit builds a request from the form and upload set and hands it to the orchestrator.
func (p *SubmissionPresenter) Submit() {
	if p == nil || p.orch == nil {
		return
	}
	req := submission.Request{Mode: inference.ModeMulti}
	if p.form != nil {
		req.Mode = p.form.Mode()
	}
	if req.Mode.NeedsFiles() {
		if p.uploads != nil {
			req.Files = p.uploads.Uploads()
		}
	} else if p.form != nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(p.form.FeatureText()), 64); err == nil {
			req.Feature = &v
		}
	}
	err := p.orch.Submit(p.ctx, req)
	switch {
	case err == nil:
	case errors.Is(err, submission.ErrBusy):
		// The button is disabled while loading; a queued click can still land here.
	case inference.Classify(err) == inference.KindValidation:
		// Surfaced through the Failed state.
	default:
		if p.logger != nil {
			p.logger.Error("submit", "error", err)
		}
	}
}

// OnLoading mirrors the loading flag.
func (p *SubmissionPresenter) OnLoading(loading bool) {
	if p == nil || p.view == nil {
		return
	}
	p.view.SetLoading(loading)
}

// OnState renders a submission state change.
func (p *SubmissionPresenter) OnState(_, next submission.State) {
	if p == nil || p.view == nil {
		return
	}
	switch next.Phase {
	case submission.PhaseIdle:
		p.results = nil
		p.view.SetResults(nil)
		p.view.SetStatus("", false)
	case submission.PhaseInFlight:
		p.results = nil
		p.view.SetResults(nil)
		p.view.SetStatus(inFlightText(next), false)
	case submission.PhaseSucceeded:
		p.results = next.Results
		p.view.SetResults(p.items(next.Results))
		p.view.SetStatus(resultCountText(len(next.Results)), false)
	case submission.PhaseFailed:
		p.results = nil
		p.view.SetResults(nil)
		p.view.SetStatus(next.Message, true)
	}
}

// Result returns the i-th displayed result.
func (p *SubmissionPresenter) Result(i int) (inference.ResultRecord, bool) {
	if p == nil || i < 0 || i >= len(p.results) {
		return inference.ResultRecord{}, false
	}
	return p.results[i], true
}

func (p *SubmissionPresenter) items(results []inference.ResultRecord) []ResultItem {
	items := make([]ResultItem, len(results))
	for i, r := range results {
		items[i] = ResultItem{Filename: r.Filename, Prediction: r.PredictionText()}
		if !r.HasHeatmap() || p.thumbs == nil {
			continue
		}
		th, err := p.thumbs.Get(r.Heatmap, ThumbnailSize)
		if err != nil {
			if p.logger != nil {
				p.logger.Warn("heatmap thumbnail", "file", r.Filename, "error", err)
			}
			continue
		}
		items[i].Thumbnail = th
	}
	return items
}

func inFlightText(s submission.State) string {
	if n := len(s.Snapshot); n > 0 {
		return fmt.Sprintf("Submitting %s...", plural(n, "file"))
	}
	return "Submitting..."
}

func resultCountText(n int) string {
	if n == 0 {
		return "No results returned"
	}
	return plural(n, "result")
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
