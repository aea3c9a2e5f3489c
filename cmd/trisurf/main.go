package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/hubastard/trisurf/engine/config"
	"github.com/hubastard/trisurf/engine/core"
	"github.com/hubastard/trisurf/engine/platform"
	"github.com/hubastard/trisurf/engine/profiler"
	"github.com/hubastard/trisurf/engine/scene"
)

// GLFW and GL calls must stay on the main OS thread.
func init() { runtime.LockOSThread() }

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		logLevel   = flag.String("log-level", "", "override the configured log level (debug, info, warn, error)")
		geometry   = flag.String("geometry", "", "override the configured geometry (interleaved, deinterleaved, both)")
		profileOut = flag.String("profile", "", "write a speedscope profile here on exit (profile builds only)")
	)
	flag.Parse()

	if err := run(*configPath, *logLevel, *geometry, *profileOut); err != nil {
		fmt.Fprintln(os.Stderr, "trisurf:", err)
		os.Exit(1)
	}
}

func run(configPath, logLevel, geometry, profileOut string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if geometry != "" {
		cfg.Geometry = geometry
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	if profileOut != "" {
		profiler.Init(600)
		defer func() {
			for _, st := range profiler.Summary() {
				log.Info("span", "name", st.Name, "count", st.Count, "mean", st.Mean(), "max", st.Max)
			}
			if err := profiler.WriteSpeedscope(profileOut); err != nil {
				log.Warn("profile not written", "path", profileOut, "err", err)
			}
		}()
	}

	surface, err := platform.NewGLFWSurface(cfg, log)
	if err != nil {
		return err
	}
	defer surface.Destroy()

	sc, err := scene.Load(surface.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer sc.Destroy()

	driver, err := core.NewFrameDriver(surface.Context(), surface, sc.Frame(), core.DriverOptions{
		ExitKey: cfg.ExitKey,
		Logger:  log,
	})
	if err != nil {
		return err
	}
	return driver.Run()
}
