package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/ytget/downbad/internal/api"
	"github.com/ytget/downbad/internal/config"
	"github.com/ytget/downbad/internal/download"
	"github.com/ytget/downbad/internal/launcher"
	"github.com/ytget/downbad/internal/metrics"
	"github.com/ytget/downbad/internal/platform"
	"github.com/ytget/downbad/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.downbad"
	AppName = "DownBad"

	ShutdownTimeout = 5 * time.Second
)

func main() {
	headless := flag.Bool("headless", false, "run without the desktop window, serving only the control API")
	addr := flag.String("addr", "", "control API listen address (overrides DOWNBAD_API_ADDR, \"off\" disables it)")
	envDir := flag.String("env-dir", "", "directory holding .env files")
	flag.Parse()

	log.Printf("%s v%s starting...", AppName, version)

	cfg, err := config.Load(*envDir)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if *addr != "" {
		cfg.APIAddr = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracker, m := newTracker(ctx, cfg)

	var srv *http.Server
	if cfg.APIAddr != "" && cfg.APIAddr != "off" {
		srv = startAPI(cfg.APIAddr, tracker, m)
	} else if *headless {
		log.Fatalf("Headless mode needs the control API; set -addr or %s", config.EnvAPIAddr)
	}

	if *headless {
		<-ctx.Done()
	} else {
		runDesktop(ctx, tracker)
		stop()
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[API] Shutdown failed: %v", err)
		}
	}
	log.Printf("%s stopped", AppName)
}

// newTracker wires the launcher, metrics, playlist expansion and progress
// estimation into a tracker
func newTracker(ctx context.Context, cfg config.Config) (*download.Tracker, *metrics.PrometheusMetrics) {
	l := launcher.NewExec(cfg.Executable, cfg.Script)
	m := metrics.New(metrics.DefaultNamespace)

	tracker := download.NewTracker(ctx, l)
	tracker.SetWorkDir(cfg.WorkDir)
	tracker.SetMetrics(m)
	tracker.SetPlaylistExpander(platform.NewYTDLPExpander())
	tracker.SetEstimateDuration(cfg.EstimateDuration)

	if cfg.EstimateDuration > 0 {
		go tracker.RunEstimator(ctx, cfg.EstimateInterval)
	}
	return tracker, m
}

func startAPI(addr string, tracker *download.Tracker, m *metrics.PrometheusMetrics) *http.Server {
	router := api.SetupRoutes(api.NewHandler(tracker, platform.OpenFolder), m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[API] Listening on http://%s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[API] Server failed: %v", err)
		}
	}()
	return srv
}

func runDesktop(ctx context.Context, tracker *download.Tracker) {
	myApp := app.NewWithID(AppID)
	myWindow := myApp.NewWindow(fmt.Sprintf("%s v%s", AppName, version))

	ui.NewRootUI(myWindow, myApp, tracker, platform.OpenFolder)

	// Close the window on SIGINT/SIGTERM
	go func() {
		<-ctx.Done()
		fyne.Do(myApp.Quit)
	}()

	myWindow.ShowAndRun()
}
