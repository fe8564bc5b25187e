package view

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/soocke/predict-client/config"
	"github.com/soocke/predict-client/domain/inference"
	"github.com/soocke/predict-client/ui/model"
	"github.com/soocke/predict-client/ui/presenter"
	"github.com/soocke/predict-client/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Handlers are the user actions the root view forwards to presenters.
type Handlers struct {
	Browse        func()
	Remove        func(index int)
	Clear         func()
	Submit        func()
	Enlarge       func(index int)
	CloseViewer   func()
	ModeChanged   func(inference.Mode)
	ConfigApplied func(*config.Config)
	Exit          func()
}

// RootView composes the top-level application layout and wires UI callbacks.
// It owns high-level subviews but exposes minimal exported fields for presenters.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger
	dialog  FileDialog

	// Subviews
	Busy        BusyStats
	Files       FileList
	Gallery     ResultGallery
	Viewer      ViewerOverlay
	ConfigPanel ConfigPanel

	// Widgets
	ModeSelect *TComboboxWidget
	Feature    *TextWidget
	SubmitBtn  *TButtonWidget
	LoadingLbl *LabelWidget
	StatusLbl  *TLabelWidget

	mode inference.Mode
}

// UI is the view surface the presenters drive.
type UI interface {
	presenter.FilePicker
	presenter.FileListView
	presenter.SubmissionView
	presenter.ElapsedView
	presenter.FormSource
	presenter.ViewerView
}

var _ UI = (*RootView)(nil)

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger, dialog: FileDialog{Extensions: cfg.FileExtensions}, mode: cfg.DefaultMode()}
}

// Build constructs the layout and binds h to the widgets.
func (rv *RootView) Build(h Handlers) {
	if rv == nil {
		return
	}
	GridColumnConfigure(App, 0, Weight(1))

	// Row 0: mode, feature value and actions
	bar := Frame()
	Grid(bar, Row(0), Column(0), Columnspan(5), Sticky("we"), Padx("0.3m"), Pady("0.3m"))
	Grid(Label(Txt("Mode")), In(bar), Row(0), Column(0), Sticky("w"), Padx("0.2m"))
	labels := make([]string, len(inference.Modes))
	current := 0
	for i, m := range inference.Modes {
		labels[i] = m.String()
		if m == rv.mode {
			current = i
		}
	}
	rv.ModeSelect = TCombobox(Values(labels), Width(10), State("readonly"))
	Grid(rv.ModeSelect, In(bar), Row(0), Column(1), Sticky("w"), Padx("0.2m"))
	rv.ModeSelect.Current(current)
	Bind(rv.ModeSelect, "<<ComboboxSelected>>", Command(func() {
		idx, err := strconv.Atoi(rv.ModeSelect.Current(nil))
		if err != nil || idx < 0 || idx >= len(inference.Modes) {
			if rv.logger != nil {
				rv.logger.Error("mode selection parse error", "error", err)
			}
			return
		}
		rv.mode = inference.Modes[idx]
		if h.ModeChanged != nil {
			h.ModeChanged(rv.mode)
		}
	}))
	Grid(Label(Txt("Feature")), In(bar), Row(0), Column(2), Sticky("w"), Padx("0.2m"))
	rv.Feature = Text(Height(1), Width(10))
	Grid(rv.Feature, In(bar), Row(0), Column(3), Sticky("w"), Padx("0.2m"))
	Grid(Button(Txt("Add Files..."), Command(h.Browse)), In(bar), Row(0), Column(4), Sticky("we"), Padx("0.2m"))
	Grid(TButton(Txt("Clear"), Style(theme.StyleClearButton), Command(h.Clear)), In(bar), Row(0), Column(5), Sticky("we"), Padx("0.2m"))
	rv.SubmitBtn = TButton(Txt("Submit"), Style(theme.StyleSubmitButton), Command(h.Submit))
	Grid(rv.SubmitBtn, In(bar), Row(0), Column(6), Sticky("we"), Padx("0.2m"))
	Grid(Button(Txt("Exit"), Command(h.Exit)), In(bar), Row(0), Column(7), Sticky("we"), Padx("0.2m"))

	// Row 1: staged files
	rv.Files = NewFileList(1, h.Remove)

	// Row 2: loading indicator, status line and timers
	statusBar := Frame()
	Grid(statusBar, Row(2), Column(0), Columnspan(5), Sticky("we"), Padx("0.3m"))
	GridColumnConfigure(statusBar.Window, 1, Weight(1))
	rv.LoadingLbl = Label(Txt(""), Width(12), Anchor("w"))
	Grid(rv.LoadingLbl, In(statusBar), Row(0), Column(0), Sticky("w"))
	rv.StatusLbl = TLabel(Txt(""), Anchor("w"), Style(theme.StyleStatusLabel))
	Grid(rv.StatusLbl, In(statusBar), Row(0), Column(1), Sticky("we"))
	rv.Busy = NewBusyStats(statusBar, 0, 2)

	// Row 3: results
	rv.Gallery = NewResultGallery(3, h.Enlarge)
	GridRowConfigure(App, 3, Weight(1))

	// Rows 4+: backend settings
	rv.ConfigPanel = NewConfigPanel(rv.cfg, rv.cfgPath, rv.logger, func(c *config.Config) {
		rv.dialog.Extensions = c.FileExtensions
		if h.ConfigApplied != nil {
			h.ConfigApplied(c)
		}
	})
	rv.ConfigPanel.Build(4)

	rv.Viewer = NewViewerOverlay(h.CloseViewer, rv.logger)
}

// PickFiles opens the file dialog.
func (rv *RootView) PickFiles(multi bool) []string { return rv.dialog.PickFiles(multi) }

func (rv *RootView) SetFiles(files []model.SelectedFile) {
	if rv != nil && rv.Files != nil {
		rv.Files.SetFiles(files)
	}
}

// SetLoading toggles the loading indicator and locks inputs while a request is outstanding.
func (rv *RootView) SetLoading(loading bool) {
	if rv == nil {
		return
	}
	state, text := "normal", ""
	if loading {
		state, text = "disabled", "Loading..."
	}
	if rv.SubmitBtn != nil {
		rv.SubmitBtn.Configure(State(state))
	}
	if rv.LoadingLbl != nil {
		rv.LoadingLbl.Configure(Txt(text))
	}
	if rv.ConfigPanel != nil {
		rv.ConfigPanel.SetEditable(!loading)
	}
}

func (rv *RootView) SetStatus(text string, isError bool) {
	if rv == nil || rv.StatusLbl == nil {
		return
	}
	style := theme.StyleStatusLabel
	if isError {
		style = theme.StyleErrorLabel
	}
	rv.StatusLbl.Configure(Txt(text), Style(style))
}

func (rv *RootView) SetResults(items []presenter.ResultItem) {
	if rv != nil && rv.Gallery != nil {
		rv.Gallery.SetResults(items)
	}
}

func (rv *RootView) SetElapsed(current, total time.Duration) {
	if rv == nil || rv.Busy == nil {
		return
	}
	rv.Busy.SetCurrent(current)
	rv.Busy.SetTotal(total)
}

// Mode returns the mode chosen in the combobox.
func (rv *RootView) Mode() inference.Mode { return rv.mode }

// FeatureText returns the raw feature entry text.
func (rv *RootView) FeatureText() string {
	if rv == nil || rv.Feature == nil {
		return ""
	}
	return strings.TrimSpace(strings.Join(rv.Feature.Get("1.0", END), ""))
}

func (rv *RootView) Show(title string, png []byte) {
	if rv != nil && rv.Viewer != nil {
		rv.Viewer.Show(title, png)
	}
}

func (rv *RootView) Hide() {
	if rv != nil && rv.Viewer != nil {
		rv.Viewer.Hide()
	}
}
