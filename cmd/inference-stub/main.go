// Command inference-stub serves a local stand-in for the inference backend so
// the predict client can be run and demoed without the real model service.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/soocke/predict-client/stub"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8000", "listen address")
	threshold := flag.Float64("threshold", 1.0, "median coverage at or above which a sample is Positive")
	featureThreshold := flag.Float64("feature-threshold", 0.5, "feature value at or above which /predict/ returns class 1")
	delay := flag.Duration("delay", 0, "artificial latency added to model routes")
	origins := flag.String("origins", "http://localhost:5173", "comma separated CORS origins")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	srv := stub.NewServer(stub.Options{
		Threshold:        *threshold,
		FeatureThreshold: *featureThreshold,
		AllowOrigins:     splitList(*origins),
		Delay:            *delay,
		Logger:           logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.Start(*addr) }()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
		return
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
		os.Exit(1)
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
