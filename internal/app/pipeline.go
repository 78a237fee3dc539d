package app

import (
	"context"
	"log"
	"time"

	"github.com/wayband/wayband/internal/cluster"
	"github.com/wayband/wayband/internal/haptic"
	"github.com/wayband/wayband/internal/sector"
	"github.com/wayband/wayband/internal/store"
)

// runPipeline is the main loop. Each tick processes one frame start to
// finish:
//
//  1. Capture a frame
//  2. Estimate its depth map
//  3. Classify ground pixels
//  4. Cluster non-ground points into obstacles
//  5. Map obstacles to sectors
//  6. Plan and send belt commands
//  7. Publish to the visualizer and record telemetry
//
// Capture and estimation failures abandon the cycle and retry on the next
// tick. Transport failures are logged and the loop continues. A stop signal
// lets the in-flight frame finish before the loop exits.
func (a *App) runPipeline(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	interval := time.Second / time.Duration(a.cfg.Camera.FPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			a.processFrame()
		}
	}
}

// processFrame runs the pipeline once. Collaborator calls share a bounded
// context so a stuck camera or model cannot wedge the loop forever.
func (a *App) processFrame() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.CollaboratorWait))
	defer cancel()

	frame, err := a.camera.ReadFrame(ctx)
	if err != nil {
		log.Printf("Error reading frame: %v", err)
		return
	}

	depthMap, err := a.estimator.Estimate(ctx, frame)
	frame.Close() // Done with the frame
	if err != nil {
		log.Printf("Error estimating depth: %v", err)
		return
	}

	// Shape and range checks guard the pure stages: a map that fails here
	// is an estimator contract bug, not a recoverable frame condition.
	if depthMap.Width() != a.cfg.Camera.Width || depthMap.Height() != a.cfg.Camera.Height {
		log.Printf("Depth map is %dx%d, configured frame is %dx%d; dropping frame",
			depthMap.Width(), depthMap.Height(), a.cfg.Camera.Width, a.cfg.Camera.Height)
		return
	}
	if err := depthMap.Validate(); err != nil {
		log.Printf("Rejecting depth map: %v", err)
		return
	}

	mask := a.classifier.Classify(depthMap)
	obstacles := cluster.Cluster(depthMap, mask, a.params)
	reading := a.mapper.Map(obstacles)
	commands := a.planner.Plan(reading)

	for _, cmd := range commands {
		if err := a.transport.Send(ctx, cmd); err != nil {
			log.Printf("Error sending belt command %d,%d: %v", cmd.Motor, cmd.Intensity, err)
		}
	}

	if a.visualizer != nil {
		a.visualizer.Render(obstacles, reading)
	}

	a.frameSeq++
	if a.telemetry != nil && a.sessionID != "" {
		if err := a.telemetry.RecordFrame(a.sessionID, frameRecord(a.frameSeq, obstacles, reading, commands)); err != nil {
			log.Printf("Error recording frame telemetry: %v", err)
		}
	}
}

// frameRecord converts one frame's results into the store's shape.
func frameRecord(seq int64, obstacles []cluster.Obstacle, reading sector.Reading, commands []haptic.Command) store.FrameRecord {
	rec := store.FrameRecord{
		Seq:           seq,
		ObstacleCount: len(obstacles),
	}
	for name, dist := range reading {
		r := store.Reading{Sector: name}
		if dist.Valid {
			v := dist.Value
			r.Distance = &v
		}
		rec.Readings = append(rec.Readings, r)
	}
	for _, cmd := range commands {
		rec.Commands = append(rec.Commands, store.Command{Motor: cmd.Motor, Intensity: int(cmd.Intensity)})
	}
	return rec
}
