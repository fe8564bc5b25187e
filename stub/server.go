package stub

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Labels reported by the coverage routes.
const (
	LabelPositive = "Positive"
	LabelNegative = "Negative"
)

// Options configures the stand-in backend.
type Options struct {
	// Threshold is the median coverage at or above which a sample is Positive.
	Threshold float64
	// FeatureThreshold splits /predict/ inputs into class 1 and class 0.
	FeatureThreshold float64
	Windows          WindowOptions
	Heatmap          HeatmapOptions
	AllowOrigins     []string
	BodyLimit        string
	// Delay is added to every model route to exercise client loading states.
	Delay  time.Duration
	Logger *slog.Logger
}

func (o *Options) defaults() {
	if o.Threshold == 0 {
		o.Threshold = 1.0
	}
	if o.Windows == (WindowOptions{}) {
		o.Windows = DefaultWindows
	}
	if o.Heatmap == (HeatmapOptions{}) {
		o.Heatmap = HeatmapOptions{Width: 800, Height: 440}
	}
	if len(o.AllowOrigins) == 0 {
		o.AllowOrigins = []string{"http://localhost:5173"}
	}
	if o.BodyLimit == "" {
		o.BodyLimit = "64M"
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Server serves the inference HTTP contract.
type Server struct {
	echo     *echo.Echo
	opts     Options
	logger   *slog.Logger
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	analyzed prometheus.Counter
}

// NewServer builds the echo instance and registers routes.
func NewServer(opts Options) *Server {
	opts.defaults()
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	s := &Server{
		echo:     e,
		opts:     opts,
		logger:   opts.Logger,
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inference_stub",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		analyzed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "inference_stub",
			Name:      "files_analyzed_total",
			Help:      "Coverage files parsed successfully.",
		}),
	}
	reg.MustRegister(s.requests, s.analyzed)

	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.requests.WithLabelValues(c.Path(), strconv.Itoa(v.Status)).Inc()
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "request_id", v.RequestID}
			if v.Error != nil {
				s.logger.Warn("request", append(attrs, "error", v.Error)...)
				return nil
			}
			s.logger.Info("request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     opts.AllowOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	e.Use(middleware.BodyLimit(opts.BodyLimit))

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleRoot)
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	s.echo.POST("/predict", s.handlePredict)
	s.echo.POST("/process-multiple-files", s.handleProcessMultiple)
	s.echo.POST("/generate-heatmap", s.handleGenerateHeatmap)
	s.echo.POST("/predict/", s.handlePredictFeature)
}

// Handler exposes the router for httptest servers.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on addr until Shutdown. It returns http.ErrServerClosed after a clean stop.
func (s *Server) Start(addr string) error {
	s.logger.Info("inference stub listening", "addr", addr)
	return s.echo.Start(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// handleError renders every failure as {"detail": "..."}.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	detail := "internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		detail = fmt.Sprint(he.Message)
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, map[string]string{"detail": detail})
	}
	if err != nil {
		s.logger.Error("write error response", "error", err)
	}
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "inference stub is running"})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type predictionResponse struct {
	Prediction any `json:"prediction"`
}

type multiResult struct {
	Filename   string `json:"filename"`
	Prediction string `json:"prediction"`
	Heatmap    string `json:"heatmap"`
}

type multiResponse struct {
	Results []multiResult `json:"results"`
}

func (s *Server) handlePredict(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "field 'file' is required")
	}
	a, err := s.analyze(c.Request().Context(), fh)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, predictionResponse{Prediction: a.Label})
}

func (s *Server) handleProcessMultiple(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "multipart form with field 'files' is required")
	}
	files := form.File["files"]
	if len(files) == 0 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "field 'files' is required")
	}
	out := multiResponse{Results: make([]multiResult, 0, len(files))}
	for _, fh := range files {
		a, err := s.analyze(c.Request().Context(), fh)
		if err != nil {
			return err
		}
		img, err := RenderHeatmap(a.Matrix, s.opts.Heatmap)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, fmt.Sprintf("%s: %v", fh.Filename, err))
		}
		out.Results = append(out.Results, multiResult{
			Filename:   fh.Filename,
			Prediction: a.Label,
			Heatmap:    base64.StdEncoding.EncodeToString(img),
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleGenerateHeatmap(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "field 'file' is required")
	}
	a, err := s.analyze(c.Request().Context(), fh)
	if err != nil {
		return err
	}
	img, err := RenderHeatmap(a.Matrix, s.opts.Heatmap)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, fmt.Sprintf("%s: %v", fh.Filename, err))
	}
	return c.Blob(http.StatusOK, "image/png", img)
}

type featureInput struct {
	Feature *float64 `json:"feature"`
}

func (s *Server) handlePredictFeature(c echo.Context) error {
	var in featureInput
	if err := c.Bind(&in); err != nil || in.Feature == nil || math.IsNaN(*in.Feature) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "body must be {\"feature\": <number>}")
	}
	if err := s.wait(c.Request().Context()); err != nil {
		return err
	}
	class := 0
	if *in.Feature >= s.opts.FeatureThreshold {
		class = 1
	}
	return c.JSON(http.StatusOK, predictionResponse{Prediction: class})
}

// Analysis is the derived view of one coverage file.
type Analysis struct {
	Score  float64
	Label  string
	Matrix [][]float64
}

// Analyze smooths bins into the arm matrix and scores it against threshold.
func Analyze(bins []Bin, w WindowOptions, threshold float64) Analysis {
	m := Matrix(Smooth(bins, w))
	score := Score(m)
	label := LabelNegative
	if !math.IsNaN(score) && score >= threshold {
		label = LabelPositive
	}
	return Analysis{Score: score, Label: label, Matrix: m}
}

func (s *Server) analyze(ctx context.Context, fh *multipart.FileHeader) (Analysis, error) {
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".txt") {
		return Analysis{}, echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("invalid file format: %s", fh.Filename))
	}
	if err := s.wait(ctx); err != nil {
		return Analysis{}, err
	}
	f, err := fh.Open()
	if err != nil {
		return Analysis{}, echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("%s: %v", fh.Filename, err))
	}
	defer f.Close()
	bins, err := ParseCoverage(f)
	if err != nil {
		return Analysis{}, echo.NewHTTPError(http.StatusUnprocessableEntity, fmt.Sprintf("%s: %v", fh.Filename, err))
	}
	s.analyzed.Inc()
	a := Analyze(bins, s.opts.Windows, s.opts.Threshold)
	s.logger.Debug("analyzed coverage", "file", fh.Filename, "bins", len(bins), "score", a.Score, "label", a.Label)
	return a, nil
}

func (s *Server) wait(ctx context.Context) error {
	if s.opts.Delay <= 0 {
		return nil
	}
	t := time.NewTimer(s.opts.Delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return echo.NewHTTPError(http.StatusServiceUnavailable, "request cancelled")
	}
}
