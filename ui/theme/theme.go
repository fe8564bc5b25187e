// Package theme holds the colour palettes and ttk styles of the predict client.
package theme

import (
	tk "modernc.org/tk9.0"
)

// Palette is the set of semantic colours views draw with.
type Palette struct {
	AppBg     string
	Surface   string
	Border    string
	Primary   string
	Danger    string
	Accent    string // prediction text on result cards
	Text      string
	TextMuted string
	Backdrop  string // viewer overlay background
}

var (
	Light = Palette{
		AppBg:     "#f7f9fb",
		Surface:   "#ffffff",
		Border:    "#d0d7de",
		Primary:   "#2563eb",
		Danger:    "#dc2626",
		Accent:    "#0f766e",
		Text:      "#1e293b",
		TextMuted: "#64748b",
		Backdrop:  "#1e293b",
	}
	Dark = Palette{
		AppBg:     "#0f172a",
		Surface:   "#1e293b",
		Border:    "#334155",
		Primary:   "#3b82f6",
		Danger:    "#ef4444",
		Accent:    "#2dd4bf",
		Text:      "#f1f5f9",
		TextMuted: "#94a3b8",
		Backdrop:  "#020617",
	}
)

// ttk style names.
const (
	StyleSubmitButton = "submit.TButton"
	StyleClearButton  = "clear.TButton"
	StyleStatusLabel  = "status.TLabel"
	StyleErrorLabel   = "error.TLabel"
)

var active = Light

// Current returns the palette applied last.
func Current() Palette { return active }

// Apply activates the base theme and configures the client styles. Call it on
// the Tk thread before building views.
func Apply(dark bool) Palette {
	active, base := Light, "azure light"
	if dark {
		active, base = Dark, "azure dark"
	}
	_ = tk.ActivateTheme(base)
	tk.App.Configure(tk.Background(active.AppBg))

	button := func(name, bg string) {
		tk.StyleConfigure(name,
			tk.Background(bg),
			tk.Foreground("white"),
			tk.Padding("4p 3p"),
			tk.Borderwidth(1),
			tk.Relief("ridge"),
		)
	}
	button(StyleSubmitButton, active.Primary)
	button(StyleClearButton, active.Danger)

	tk.StyleConfigure(StyleStatusLabel, tk.Foreground(active.TextMuted), tk.Padding("2p 1p"))
	tk.StyleConfigure(StyleErrorLabel, tk.Foreground(active.Danger), tk.Padding("2p 1p"))
	return active
}
