package view

import (
	"fmt"

	"github.com/soocke/predict-client/ui/presenter"
	"github.com/soocke/predict-client/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ResultGallery shows one card per result: thumbnail, filename, prediction and
// an Enlarge button when a heatmap is present.
type ResultGallery interface {
	SetResults(items []presenter.ResultItem)
}

const galleryColumns = 3

type resultGallery struct {
	frame     *FrameWidget
	cards     []*FrameWidget
	photos    []*Img // Tk photos owned by the current cards
	onEnlarge func(int)
}

// NewResultGallery creates the gallery frame at row of the root grid.
func NewResultGallery(row int, onEnlarge func(index int)) ResultGallery {
	frame := Frame()
	Grid(frame, Row(row), Column(0), Columnspan(5), Sticky("nsew"), Padx("0.4m"), Pady("0.3m"))
	return &resultGallery{frame: frame, onEnlarge: onEnlarge}
}

func (v *resultGallery) SetResults(items []presenter.ResultItem) {
	if v == nil || v.frame == nil {
		return
	}
	v.reset()
	for i, it := range items {
		v.cards = append(v.cards, v.card(i, it))
	}
}

func (v *resultGallery) card(i int, it presenter.ResultItem) *FrameWidget {
	idx := i
	enlarge := func() {
		if v.onEnlarge != nil {
			v.onEnlarge(idx)
		}
	}
	card := v.frame.Frame(Borderwidth(1), Relief("ridge"))
	Grid(card, Row(i/galleryColumns), Column(i%galleryColumns), Sticky("nw"), Padx("0.4m"), Pady("0.4m"))
	r := 0
	if len(it.Thumbnail) > 0 {
		photo := NewPhoto(Data(it.Thumbnail))
		v.photos = append(v.photos, photo)
		thumb := card.Label(Image(photo), Borderwidth(1), Relief("sunken"))
		Grid(thumb, Row(r), Column(0), Padx("0.2m"), Pady("0.2m"))
		Bind(thumb, "<Button-1>", Command(enlarge))
		r++
	}
	Grid(card.Label(Txt(it.Filename), Anchor("w")), Row(r), Column(0), Sticky("w"), Padx("0.2m"))
	r++
	pred := it.Prediction
	if pred == "" {
		pred = "(no prediction)"
	}
	Grid(card.Label(Txt(fmt.Sprintf("Prediction: %s", pred)), Foreground(theme.Current().Accent), Anchor("w"), Justify("left"), Wraplength("55m")), Row(r), Column(0), Sticky("w"), Padx("0.2m"))
	r++
	if len(it.Thumbnail) > 0 {
		Grid(card.Button(Txt("Enlarge"), Command(enlarge)), Row(r), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	}
	return card
}

// reset destroys the previous cards and releases their photo images.
func (v *resultGallery) reset() {
	for _, c := range v.cards {
		Destroy(c)
	}
	v.cards = v.cards[:0]
	for _, p := range v.photos {
		p.Delete()
	}
	v.photos = v.photos[:0]
}
