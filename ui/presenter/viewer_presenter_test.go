package presenter

import (
	"image"
	"testing"

	"github.com/soocke/predict-client/domain/inference"
	"github.com/soocke/predict-client/domain/submission"
	"github.com/soocke/predict-client/ui/images"
	"github.com/soocke/predict-client/ui/model"
)

type mockResults struct{ recs []inference.ResultRecord }

func (m *mockResults) Result(i int) (inference.ResultRecord, bool) {
	if i < 0 || i >= len(m.recs) {
		return inference.ResultRecord{}, false
	}
	return m.recs[i], true
}

type mockViewer struct {
	shows, hides int
	title        string
	png          []byte
}

func (v *mockViewer) Show(title string, png []byte) { v.shows++; v.title = title; v.png = png }
func (v *mockViewer) Hide()                         { v.hides++ }

func heatmapPNG(w, h int) []byte {
	return images.EncodePNG(image.NewRGBA(image.Rect(0, 0, w, h)))
}

func TestViewerPresenter_OpenAndClose(t *testing.T) {
	vm := &model.ViewerModel{}
	view := &mockViewer{}
	res := &mockResults{recs: []inference.ResultRecord{
		{Filename: "noimage.txt"},
		{Filename: "fileA.txt", Heatmap: heatmapPNG(20, 10)},
	}}
	p := NewViewerPresenter(vm, res, view, nil)

	p.OpenResult(0)
	p.OpenResult(7)
	if vm.IsOpen() || view.shows != 0 {
		t.Fatalf("results without heatmap must not open the overlay")
	}

	p.OpenResult(1)
	if !vm.IsOpen() || view.shows != 1 || view.title != "fileA.txt" || len(view.png) == 0 {
		t.Fatalf("open failed: open=%v shows=%d title=%q", vm.IsOpen(), view.shows, view.title)
	}

	p.Close()
	p.Close()
	if vm.IsOpen() || view.hides != 1 {
		t.Fatalf("close should hide exactly once: open=%v hides=%d", vm.IsOpen(), view.hides)
	}
}

func TestViewerPresenter_ScalesLargeHeatmaps(t *testing.T) {
	view := &mockViewer{}
	res := &mockResults{recs: []inference.ResultRecord{{Filename: "big.txt", Heatmap: heatmapPNG(2400, 400)}}}
	p := NewViewerPresenter(&model.ViewerModel{}, res, view, nil)

	p.OpenResult(0)

	img, err := images.Decode(view.png)
	if err != nil {
		t.Fatalf("decode shown image: %v", err)
	}
	if b := img.Bounds(); b.Dx() != maxViewerW || b.Dy() != 200 {
		t.Fatalf("expected %dx200, got %v", maxViewerW, b)
	}
}

func TestViewerPresenter_UndecodableHeatmapStaysClosed(t *testing.T) {
	vm := &model.ViewerModel{}
	view := &mockViewer{}
	res := &mockResults{recs: []inference.ResultRecord{{Filename: "bad.txt", Heatmap: []byte("not a png")}}}
	p := NewViewerPresenter(vm, res, view, nil)

	p.OpenResult(0)

	if vm.IsOpen() || view.shows != 0 {
		t.Fatalf("undecodable heatmap should not open the overlay")
	}
}

func TestViewerPresenter_ClosesWhenResultsGo(t *testing.T) {
	vm := &model.ViewerModel{}
	view := &mockViewer{}
	res := &mockResults{recs: []inference.ResultRecord{{Filename: "fileA.txt", Heatmap: heatmapPNG(4, 4)}}}
	p := NewViewerPresenter(vm, res, view, nil)
	p.OpenResult(0)

	p.OnState(submission.State{}, submission.State{Phase: submission.PhaseSucceeded})
	if !vm.IsOpen() {
		t.Fatalf("succeeded state keeps the overlay")
	}
	p.OnState(submission.State{}, submission.State{Phase: submission.PhaseInFlight})
	if vm.IsOpen() || view.hides != 1 {
		t.Fatalf("new submission should close the overlay")
	}
}
