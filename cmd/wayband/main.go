package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gocv.io/x/gocv"

	"github.com/wayband/wayband/internal/app"
	"github.com/wayband/wayband/internal/capture"
	"github.com/wayband/wayband/internal/config"
	"github.com/wayband/wayband/internal/depth"
	"github.com/wayband/wayband/internal/haptic"
	"github.com/wayband/wayband/internal/server"
	"github.com/wayband/wayband/internal/store"
)

func main() {
	var configPath string
	var cameraIndex int
	var beltPort string
	var noHaptics bool
	var mockCamera bool
	var mockDepth bool
	flag.StringVar(&configPath, "config", "config.yaml", "Path to YAML config.")
	flag.IntVar(&cameraIndex, "camera", -1, "Override camera device index.")
	flag.StringVar(&beltPort, "port", "", "Override belt serial port.")
	flag.BoolVar(&noHaptics, "no-haptics", false, "Log belt commands instead of sending them.")
	flag.BoolVar(&mockCamera, "mock-camera", false, "Play back a synthetic frame instead of opening a device.")
	flag.BoolVar(&mockDepth, "mock-depth", false, "Use the mock depth estimator even if a model is configured.")
	flag.Parse()

	cfg := config.Default()
	if _, err := os.Stat(configPath); err == nil {
		loaded, err := config.Load(configPath)
		if err != nil {
			log.Fatalf("load config %q: %v", configPath, err)
		}
		cfg = loaded
		log.Printf("Loaded config from %s", configPath)
	} else {
		log.Printf("Config file %s not found, using defaults", configPath)
	}

	if cameraIndex >= 0 {
		cfg.Camera.Index = cameraIndex
	}
	if beltPort != "" {
		cfg.Haptics.Port = beltPort
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	var camera capture.Camera
	if mockCamera {
		log.Println("Using synthetic camera playback")
		frame := gocv.NewMatWithSize(cfg.Camera.Height, cfg.Camera.Width, gocv.MatTypeCV8UC3)
		camera = capture.NewMockCamera([]*gocv.Mat{&frame}, true)
	} else {
		camera = capture.NewCamera(cfg.Camera.Index, cfg.Camera.Width, cfg.Camera.Height)
	}

	// Prefer the real model, fall back to the deterministic mock so the
	// pipeline stays runnable on machines without the model file.
	var estimator depth.Estimator
	depthCfg := depth.Config{
		ModelPath:    cfg.Depth.ModelPath,
		InputSize:    cfg.Depth.InputSize,
		OutputWidth:  cfg.Camera.Width,
		OutputHeight: cfg.Camera.Height,
	}
	switch {
	case mockDepth:
		log.Println("Using mock depth estimation")
		estimator = depth.NewMockEstimator(depth.WallAheadMap(cfg.Camera.Width, cfg.Camera.Height, 1.0, 0.4))
	default:
		if midas, err := depth.NewMidasEstimator(depthCfg); err == nil {
			estimator = midas
			log.Println("Using MiDaS depth estimation")
		} else {
			log.Printf("Depth model not available (%v), using mock estimator", err)
			estimator = depth.NewMockEstimator(depth.WallAheadMap(cfg.Camera.Width, cfg.Camera.Height, 1.0, 0.4))
		}
	}

	var transport haptic.Transport
	switch {
	case noHaptics || cfg.Haptics.Port == "":
		log.Println("No belt port configured, logging commands instead")
		transport = haptic.ConsoleTransport{}
	default:
		belt, err := haptic.OpenSerialBelt(cfg.Haptics.Port, cfg.Haptics.BaudRate)
		if err != nil {
			log.Fatalf("open belt: %v", err)
		}
		transport = belt
	}

	var telemetry *store.Store
	if cfg.Store.Enabled {
		st, err := store.New(cfg.Store.Path)
		if err != nil {
			log.Fatalf("open telemetry store: %v", err)
		}
		defer st.Close()
		telemetry = st
	}

	collaborators := app.Collaborators{
		Camera:    camera,
		Estimator: estimator,
		Transport: transport,
		Telemetry: telemetry,
	}

	if cfg.Server.Enabled {
		hub := server.NewHub(float64(cfg.Camera.Width), float64(cfg.Camera.Height), cfg.Geometry.FocalLength)
		collaborators.Visualizer = hub

		srv := server.New(server.Config{Hub: hub, Store: telemetry})
		go func() {
			log.Printf("Serving live view on %s", cfg.Server.Addr)
			if err := srv.ListenAndServe(cfg.Server.Addr); err != nil {
				log.Printf("Server stopped: %v", err)
			}
		}()
	}

	pipeline, err := app.New(cfg, collaborators)
	if err != nil {
		log.Fatalf("build pipeline: %v", err)
	}

	if err := pipeline.Start(); err != nil {
		log.Fatalf("start pipeline: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("Received %s, shutting down...", sig)

	pipeline.Stop()
}
