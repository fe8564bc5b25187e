package view

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/soocke/predict-client/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ConfigPanel encapsulates the backend settings form.
// It owns its widgets and writes back into *config.Config on ApplyChanges.
type ConfigPanel interface {
	Build(startRow int) (endRow int) // constructs widgets starting at startRow, returns next free row
	SetEditable(enabled bool)
	ApplyChanges() // parses widget text into underlying config and persists
}

type configPanel struct {
	cfg       *config.Config
	cfgPath   string
	logger    *slog.Logger
	applyBtn  *ButtonWidget
	statusLbl *LabelWidget
	widgets   map[string]*TextWidget // keyed by internal field id
	onApplied func(*config.Config)
}

// NewConfigPanel creates the view bound to cfg. onApplied runs after a
// successful apply so running components can pick up the new values.
func NewConfigPanel(cfg *config.Config, cfgPath string, logger *slog.Logger, onApplied func(*config.Config)) ConfigPanel {
	return &configPanel{cfg: cfg, cfgPath: cfgPath, logger: logger, widgets: make(map[string]*TextWidget), onApplied: onApplied}
}

func (v *configPanel) Build(startRow int) (row int) {
	c := v.cfg
	row = startRow
	makeRow := func(id, label, value string) {
		lbl := Label(Txt(label), Anchor("w"))
		Grid(lbl, Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := Text(Height(1), Width(36))
		Grid(w, Row(row), Column(1), Columnspan(3), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", value)
		v.widgets[id] = w
		row++
	}
	makeRow("baseURL", "Backend URL", c.BaseURL)
	makeRow("timeout", "Request Timeout Seconds (0 = none)", fmt.Sprintf("%d", c.RequestTimeoutSeconds))
	makeRow("maxResponse", "Max Response Bytes", fmt.Sprintf("%d", c.MaxResponseBytes))
	makeRow("extensions", "File Extensions (comma separated)", strings.Join(c.FileExtensions, ","))
	v.applyBtn = Button(Txt("Apply Changes"), Command(func() { v.ApplyChanges() }))
	Grid(v.applyBtn, Row(row), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	v.statusLbl = Label(Txt(""), Anchor("w"))
	Grid(v.statusLbl, Row(row), Column(1), Columnspan(3), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++
	return row
}

func (v *configPanel) SetEditable(enabled bool) {
	state := "disabled"
	if enabled {
		state = "normal"
	}
	for _, w := range v.widgets {
		if w != nil {
			w.Configure(State(state))
		}
	}
	if v.applyBtn != nil {
		v.applyBtn.Configure(State(state))
	}
}

func (v *configPanel) text(id string) (string, bool) {
	w := v.widgets[id]
	if w == nil {
		return "", false
	}
	return strings.TrimSpace(strings.Join(w.Get("1.0", END), "")), true
}

func (v *configPanel) ApplyChanges() {
	if v.cfg == nil {
		return
	}
	cfg := *v.cfg // copy
	if s, ok := v.text("baseURL"); ok && s != "" {
		cfg.BaseURL = s
	}
	if s, ok := v.text("timeout"); ok {
		if i, ok := parseIntField(s); ok {
			cfg.RequestTimeoutSeconds = i
		}
	}
	if s, ok := v.text("maxResponse"); ok {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			cfg.MaxResponseBytes = i
		}
	}
	if s, ok := v.text("extensions"); ok {
		cfg.FileExtensions = strings.Split(s, ",")
	}
	if verr := cfg.Validate(); verr != nil {
		v.setStatus(verr.Error())
		return
	}
	*v.cfg = cfg
	if err := v.cfg.Save(v.cfgPath); err != nil {
		if v.logger != nil {
			v.logger.Error("config save failed", "error", err)
		}
		v.setStatus("save failed: " + err.Error())
	} else {
		if v.logger != nil {
			v.logger.Info("config saved", "path", v.cfgPath)
		}
		v.setStatus("saved")
	}
	if v.onApplied != nil {
		v.onApplied(v.cfg)
	}
}

func (v *configPanel) setStatus(s string) {
	if v.statusLbl != nil {
		v.statusLbl.Configure(Txt(s))
	}
}

func parseIntField(s string) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return i, true
}
