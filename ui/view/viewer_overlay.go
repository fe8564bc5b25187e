package view

import (
	"log/slog"

	"github.com/soocke/predict-client/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders
	. "modernc.org/tk9.0"
)

// ViewerOverlay is the enlarged heatmap window. It is dismissed by its Close
// button, <Escape>, the window manager close box, or a click on the backdrop
// around the image.
type ViewerOverlay interface {
	Show(title string, png []byte)
	Hide()
}

type viewerOverlay struct {
	logger  *slog.Logger
	win     *ToplevelWidget
	photo   *Img
	onClose func()
}

// NewViewerOverlay creates the overlay manager. onClose is invoked for every
// user-initiated dismissal; it is expected to call Hide.
func NewViewerOverlay(onClose func(), logger *slog.Logger) ViewerOverlay {
	return &viewerOverlay{onClose: onClose, logger: logger}
}

func (v *viewerOverlay) Show(title string, png []byte) {
	v.destroy()
	pal := theme.Current()
	win := App.Toplevel(Borderwidth(0), Background(pal.Backdrop))
	win.WmTitle("Heatmap: " + title)
	v.win = win
	WmAttributes(win.Window, "-topmost", 1)
	WmProtocol(win.Window, "WM_DELETE_WINDOW", v.requestClose)
	GridRowConfigure(win.Window, 0, Weight(1))
	GridColumnConfigure(win.Window, 0, Weight(1))

	backdrop := win.Frame(Background(pal.Backdrop), Padx("4m"), Pady("4m"))
	Grid(backdrop, Row(0), Column(0), Sticky("nsew"))
	GridRowConfigure(backdrop.Window, 0, Weight(1))
	GridColumnConfigure(backdrop.Window, 0, Weight(1))
	v.photo = NewPhoto(Data(png))
	img := backdrop.Label(Image(v.photo), Borderwidth(1), Relief("sunken"))
	Grid(img, Row(0), Column(0))
	caption := backdrop.Label(Txt(title), Background(pal.Backdrop), Foreground("white"))
	Grid(caption, Row(1), Column(0), Pady("0.3m"))
	closeBtn := win.Button(Txt("Close [Esc]"), Command(v.requestClose))
	Grid(closeBtn, Row(1), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.4m"))

	// Clicks on the image label do not reach the backdrop binding.
	Bind(backdrop, "<Button-1>", Command(v.requestClose))
	Bind(win, "<Escape>", Command(v.requestClose))
	Focus(win.Window)
	if v.logger != nil {
		v.logger.Debug("viewer opened", "title", title, "bytes", len(png))
	}
}

func (v *viewerOverlay) Hide() { v.destroy() }

func (v *viewerOverlay) requestClose() {
	if v.onClose != nil {
		v.onClose()
		return
	}
	v.destroy()
}

func (v *viewerOverlay) destroy() {
	if v.win != nil {
		Destroy(v.win)
		v.win = nil
	}
	if v.photo != nil {
		v.photo.Delete()
		v.photo = nil
	}
}
