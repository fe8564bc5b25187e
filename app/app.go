package app

import (
	"context"
	"fmt"
	"time"

	tk "modernc.org/tk9.0"

	"github.com/soocke/predict-client/assets"
	"github.com/soocke/predict-client/debug"
	"github.com/soocke/predict-client/metrics"
	"github.com/soocke/predict-client/ui/presenter"
	"github.com/soocke/predict-client/ui/theme"
)

// App owns the Tk main window and the update loop.
type App struct {
	c       *AppContainer
	title   string
	tick    time.Duration
	afterID string
	cancel  context.CancelFunc
	stops   []func()
}

// New prepares the application. Nothing is shown until Start.
func New(title string, c *AppContainer) *App {
	tick := time.Duration(c.Config.TickMillis) * time.Millisecond
	return &App{c: c, title: title, tick: tick}
}

// Start builds the UI, starts background helpers and blocks in the Tk event loop.
// initial paths (e.g. from the command line) are staged before the loop starts.
func (a *App) Start(ctx context.Context, initial []string) {
	ctx, a.cancel = context.WithCancel(ctx)
	cfg, logger := a.c.Config, a.c.Logger

	if cfg.Debug {
		debug.StartGoroutineLogger(ctx, 5*time.Second, logger)
		debug.StartMemLogger(ctx, 5*time.Second, logger)
	}
	if cfg.MetricsAddr != "" {
		a.stops = append(a.stops, metrics.Serve(cfg.MetricsAddr, a.c.Registry, logger))
	}

	theme.Apply(cfg.DarkMode)
	tk.App.WmTitle(a.title)
	if len(assets.IconPNG) > 0 {
		tk.App.IconPhoto(tk.NewPhoto(tk.Data(assets.IconPNG)))
	}
	tk.WmProtocol(tk.App, "WM_DELETE_WINDOW", a.exitHandler)
	tk.WmGeometry(tk.App, fmt.Sprintf("%dx%d+100+100", cfg.WindowWidth, cfg.WindowHeight))

	a.c.RootView.Build(a.c.Handlers(a.exitHandler))
	a.c.RootView.SetFiles(nil)
	a.c.UploadPresenter.AddPaths(initial)

	a.c.Loop = presenter.NewLoop(a.c.Orchestrator, a.c.BusyPresenter, a.c.Clock, a.scheduleUpdate)
	logger.Info("ui started", "base_url", a.c.Client.BaseURL(), "mode", cfg.Mode)
	a.scheduleUpdate()

	tk.App.Wait()
}

func (a *App) scheduleUpdate() {
	// TclAfter keeps the callback on Tk's event loop thread.
	a.afterID = tk.TclAfter(a.tick, a.c.Loop.Tick)
}

func (a *App) exitHandler() {
	if a.afterID != "" {
		tk.TclAfterCancel(a.afterID)
	}
	if a.cancel != nil {
		a.cancel()
	}
	for _, stop := range a.stops {
		stop()
	}
	tk.Destroy(tk.App)
}
