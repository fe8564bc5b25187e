package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/soocke/predict-client/config"
	"github.com/soocke/predict-client/domain/inference"
	"github.com/soocke/predict-client/domain/submission"
	"github.com/soocke/predict-client/metrics"
	"github.com/soocke/predict-client/ui/images"
	"github.com/soocke/predict-client/ui/model"
	"github.com/soocke/predict-client/ui/presenter"
	"github.com/soocke/predict-client/ui/view"
)

// AppContainer assembles models, services, presenters and the root view.
type AppContainer struct {
	Config     *config.Config
	ConfigPath string
	Logger     *slog.Logger
	Clock      clockwork.Clock

	Registry     *prometheus.Registry
	Metrics      *metrics.Metrics
	Client       *inference.Client
	Orchestrator *submission.Orchestrator

	Uploads *model.UploadModel
	Viewer  *model.ViewerModel
	Busy    *model.BusyModel
	Thumbs  *images.ThumbnailCache

	RootView *view.RootView

	// Presenters
	UploadPresenter     *presenter.UploadPresenter
	SubmissionPresenter *presenter.SubmissionPresenter
	ViewerPresenter     *presenter.ViewerPresenter
	BusyPresenter       *presenter.BusyPresenter
	Loop                *presenter.Loop
}

// BuildContainer constructs all components. The root view is created but not
// built; Tk widgets appear in App.Start.
func BuildContainer(ctx context.Context, cfg *config.Config, cfgPath string, logger *slog.Logger) (*AppContainer, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	c := &AppContainer{Config: cfg, ConfigPath: cfgPath, Logger: logger, Clock: clockwork.NewRealClock()}

	c.Registry = metrics.NewRegistry()
	c.Metrics = metrics.New(c.Registry)
	c.Client = inference.NewClient(inference.Options{
		BaseURL:          cfg.BaseURL,
		MaxResponseBytes: cfg.MaxResponseBytes,
	}, logger)
	c.Orchestrator = submission.New(c.Client, logger, submission.Options{
		Timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		Clock:   c.Clock,
		Metrics: c.Metrics,
	})

	c.Uploads = model.NewUploadModel()
	c.Viewer = &model.ViewerModel{}
	c.Busy = model.NewBusyModel()
	thumbs, err := images.NewThumbnailCache(cfg.ThumbnailCacheSize)
	if err != nil {
		return nil, err
	}
	c.Thumbs = thumbs

	c.RootView = view.NewRootView(cfg, cfgPath, logger)
	rv := c.RootView

	c.UploadPresenter = presenter.NewUploadPresenter(c.Uploads, rv, rv, c.Orchestrator, rv.Mode, logger)
	c.SubmissionPresenter = presenter.NewSubmissionPresenter(ctx, c.Orchestrator, c.Uploads, rv, c.Thumbs, rv, logger)
	c.ViewerPresenter = presenter.NewViewerPresenter(c.Viewer, c.SubmissionPresenter, rv, logger)
	c.BusyPresenter = presenter.NewBusyPresenter(c.Busy, c.Orchestrator, rv)

	c.Orchestrator.AddListener(c.SubmissionPresenter.OnState)
	c.Orchestrator.AddListener(c.ViewerPresenter.OnState)
	c.Orchestrator.AddLoadingListener(c.SubmissionPresenter.OnLoading)
	return c, nil
}

// Handlers maps view actions onto presenters.
func (c *AppContainer) Handlers(exit func()) view.Handlers {
	return view.Handlers{
		Browse:        c.UploadPresenter.Browse,
		Remove:        c.UploadPresenter.Remove,
		Clear:         c.UploadPresenter.Clear,
		Submit:        c.SubmissionPresenter.Submit,
		Enlarge:       c.ViewerPresenter.OpenResult,
		CloseViewer:   c.ViewerPresenter.Close,
		ModeChanged:   c.UploadPresenter.ModeChanged,
		ConfigApplied: c.ApplyConfig,
		Exit:          exit,
	}
}

// ApplyConfig pushes edited backend settings into running components.
func (c *AppContainer) ApplyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	c.Client.SetBaseURL(cfg.BaseURL)
	c.Client.SetMaxResponseBytes(cfg.MaxResponseBytes)
	c.Orchestrator.SetTimeout(time.Duration(cfg.RequestTimeoutSeconds) * time.Second)
	if c.Logger != nil {
		c.Logger.Info("backend settings applied", "base_url", cfg.BaseURL, "timeout_seconds", cfg.RequestTimeoutSeconds)
	}
}
