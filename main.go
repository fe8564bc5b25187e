package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/soocke/predict-client/app"
	"github.com/soocke/predict-client/config"
)

func main() {
	cfgPath := flag.String("config", "", "config file path (default: XDG config dir)")
	debugFlag := flag.Bool("debug", false, "enable debug logging and runtime stats")
	mode := flag.String("mode", "", "submission mode: multi, single, dual or feature")
	baseURL := flag.String("base-url", "", "inference backend URL")
	flag.Parse()

	boot := NewLogger(slog.LevelInfo)
	path := *cfgPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			boot.Warn("config dir unavailable, using working directory", "error", err)
			p = "config.json"
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		boot.Warn("config load failed, using defaults", "path", path, "error", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		boot.Warn("environment overrides", "error", err)
	}
	if *mode != "" {
		cfg.Mode = *mode
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *debugFlag {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		boot.Warn("invalid setting replaced by default", "error", err)
	}

	logger := NewLogger(parseLevel(cfg.LogLevel, cfg.Debug))
	ctx := context.Background()
	c, err := app.BuildContainer(ctx, cfg, path, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "startup:", err)
		os.Exit(1)
	}
	app.New("Predict Client", c).Start(ctx, flag.Args())
}
