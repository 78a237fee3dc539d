// Package app wires the perception pipeline together and drives it once
// per camera frame.
package app

import (
	"fmt"
	"log"
	"sync"

	"github.com/wayband/wayband/internal/capture"
	"github.com/wayband/wayband/internal/cluster"
	"github.com/wayband/wayband/internal/config"
	"github.com/wayband/wayband/internal/depth"
	"github.com/wayband/wayband/internal/ground"
	"github.com/wayband/wayband/internal/haptic"
	"github.com/wayband/wayband/internal/sector"
	"github.com/wayband/wayband/internal/store"
)

// Visualizer receives each frame's obstacles for display. Rendering is
// best-effort: it never returns an error into the pipeline and must not
// block frame processing.
type Visualizer interface {
	Render(obstacles []cluster.Obstacle, reading sector.Reading)
}

// Collaborators are the externally constructed resources the pipeline
// consumes. The caller owns their lifetimes beyond Stop. Visualizer and
// Telemetry are optional.
type Collaborators struct {
	Camera     capture.Camera
	Estimator  depth.Estimator
	Transport  haptic.Transport
	Visualizer Visualizer
	Telemetry  *store.Store
}

// App is the frame-loop orchestrator. Each frame runs start to finish
// before the next begins; there is no frame pipelining.
type App struct {
	cfg        config.Config
	camera     capture.Camera
	estimator  depth.Estimator
	transport  haptic.Transport
	visualizer Visualizer
	telemetry  *store.Store

	classifier *ground.Classifier
	params     cluster.Params
	mapper     *sector.Mapper
	planner    *haptic.Planner

	mu        sync.Mutex
	stopCh    chan struct{}
	doneCh    chan struct{}
	sessionID string
	frameSeq  int64
}

// New creates an App from a validated configuration and its collaborators.
func New(cfg config.Config, c Collaborators) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if c.Camera == nil || c.Estimator == nil || c.Transport == nil {
		return nil, fmt.Errorf("camera, estimator and transport are required")
	}

	bands := cfg.Bands()
	return &App{
		cfg:        cfg,
		camera:     c.Camera,
		estimator:  c.Estimator,
		transport:  c.Transport,
		visualizer: c.Visualizer,
		telemetry:  c.Telemetry,
		classifier: ground.NewClassifier(cfg.Geometry.FocalLength, cfg.Geometry.CameraHeight, cfg.Geometry.GroundTolerance),
		params:     cluster.Params{Eps: cfg.Clustering.Eps, MinSamples: cfg.Clustering.MinSamples},
		mapper:     sector.NewMapper(bands, float64(cfg.Camera.Width), cfg.Geometry.FocalLength),
		planner:    haptic.NewPlanner(bands, cfg.Haptics.WarningDistance, cfg.Haptics.ResetOnClear),
	}, nil
}

// Start opens the camera and begins the frame loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}

	if a.telemetry != nil {
		id, err := a.telemetry.BeginSession()
		if err != nil {
			log.Printf("telemetry session not started: %v", err)
		} else {
			a.sessionID = id
		}
	}

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)

	log.Println("Obstacle pipeline started")
	return nil
}

// Stop signals the loop to exit, waits for the current frame to complete,
// and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		<-a.doneCh
		a.stopCh = nil
		a.doneCh = nil
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	if err := a.estimator.Close(); err != nil {
		log.Printf("Error closing estimator: %v", err)
	}
	if err := a.transport.Close(); err != nil {
		log.Printf("Error closing belt transport: %v", err)
	}

	if a.telemetry != nil && a.sessionID != "" {
		if err := a.telemetry.EndSession(a.sessionID); err != nil {
			log.Printf("Error closing telemetry session: %v", err)
		}
		a.sessionID = ""
	}

	log.Println("Obstacle pipeline stopped")
}
