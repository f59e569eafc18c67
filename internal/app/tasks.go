package app

import (
	"context"
	"image"
	"sync"
	"time"

	xdraw "golang.org/x/image/draw"

	"goboard/internal/calibrate"
	"goboard/internal/camera"
	"goboard/internal/render"
	"goboard/internal/vision"
)

const captureInterval = 100 * time.Millisecond

// startTasks launches the camera, vision, render and recorder loops under a
// fresh cancellable context.
func (a *App) startTasks() {
	a.tasksMu.Lock()
	defer a.tasksMu.Unlock()
	if a.tasksCancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(a.rootCtx)
	wg := &sync.WaitGroup{}
	a.tasksCancel = cancel
	a.tasksWG = wg

	for name, task := range map[string]func(context.Context){
		"camera":   a.cameraTask,
		"vision":   a.visionTask,
		"render":   a.renderTask,
		"recorder": a.recorderTask,
	} {
		wg.Add(1)
		go func(name string, task func(context.Context)) {
			defer wg.Done()
			task(ctx)
			a.log.Debugw("task stopped", "task", name)
		}(name, task)
	}
}

// stopTasks cancels the task context and waits for every loop to exit.
func (a *App) stopTasks() {
	a.tasksMu.Lock()
	defer a.tasksMu.Unlock()
	if a.tasksCancel == nil {
		return
	}
	a.tasksCancel()
	a.tasksWG.Wait()
	a.tasksCancel = nil
	a.tasksWG = nil
}

// cameraTask grabs frames at a fixed rate, publishing the raw frame and the
// dewarped board image. The device stays closed while nobody listens, and a
// failed open is not retried until the camera configuration changes.
func (a *App) cameraTask(ctx context.Context) {
	var dev *camera.Capture
	var failed bool
	defer func() {
		if dev != nil {
			dev.Close()
		}
	}()

	reload := a.cameraReload.Subscribe()
	defer reload.Close()

	ticker := time.NewTicker(captureInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if _, ok := reload.TryNext(); ok {
			if dev != nil {
				dev.Close()
				dev = nil
			}
			failed = false
		}

		if a.RawFrames.Receivers() == 0 && a.BoardFrames.Receivers() == 0 {
			if dev != nil {
				dev.Close()
				dev = nil
			}
			continue
		}

		cfg := a.Config()
		if dev == nil {
			if failed {
				continue
			}
			var err error
			dev, err = camera.Open(cfg.Camera.Device, cfg.Camera.Width, cfg.Camera.Height)
			if err != nil {
				a.log.Errorw("failed to open camera", "device", cfg.Camera.Device, "error", err)
				failed = true
				continue
			}
			a.log.Infow("camera opened", "device", cfg.Camera.Device)
		}

		frame, ok := dev.Read()
		if !ok {
			a.log.Warnw("camera produced no frame, reopening")
			dev.Close()
			dev = nil
			continue
		}
		a.RawFrames.Send(frame)

		bounds := frame.Bounds()
		dewarp := calibrate.BoardDewarp(cfg.Camera, bounds.Dx(), bounds.Dy(), cfg.Board)
		boardFrame, err := calibrate.WarpRGBA(frame, dewarp,
			cfg.Board.Width*calibrate.StoneSize, cfg.Board.Height*calibrate.StoneSize)
		if err != nil {
			a.log.Errorw("failed to dewarp frame", "error", err)
			continue
		}
		a.BoardFrames.Send(boardFrame)
	}
}

// visionTask classifies each dewarped board frame and feeds the result to
// the reconciliation engine.
func (a *App) visionTask(ctx context.Context) {
	frames := a.BoardFrames.Subscribe()
	defer frames.Close()

	for {
		frame, err := frames.Next(ctx)
		if err != nil {
			return
		}
		if frame == nil {
			continue
		}

		cfg := a.Config()
		reference := cfg.Camera.Reference
		if reference == nil {
			// Without a lighting baseline the classifier feeds on zeros for
			// the reference planes.
			reference = image.NewRGBA(frame.Bounds())
		} else if !reference.Bounds().Eq(frame.Bounds()) {
			// A reference captured under different capture settings is
			// rescaled rather than discarded.
			scaled := image.NewRGBA(frame.Bounds())
			xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), reference, reference.Bounds(), xdraw.Src, nil)
			reference = scaled
		}

		probs := vision.Grid(a.classifier, frame, reference, cfg.Board)
		resolved, ambiguous := vision.Resolve(probs)

		a.mu.Lock()
		if ambiguous == nil {
			a.engine.Tick(&resolved, nil)
		} else {
			a.engine.Tick(nil, ambiguous)
		}
		a.mu.Unlock()

		a.Probabilities.Send(probs)
		if ambiguous == nil {
			a.ResolvedBoards.Send(resolved)
		}
		a.frameReady.Send(struct{}{})
	}
}

// recorderTask forwards committed game events to the SGF recorder.
func (a *App) recorderTask(ctx context.Context) {
	events := a.Events.Subscribe()
	defer events.Close()

	for {
		evt, err := events.Next(ctx)
		if err != nil {
			return
		}
		a.recorder.RecordEvent(ctx, evt)
	}
}

// renderTask redraws the display whenever its inputs change, plus once a
// second for the blink cycle. Wakes are coalesced so a burst of updates
// yields one redraw.
func (a *App) renderTask(ctx context.Context) {
	wake := make(chan struct{}, 1)

	modes := a.displayMode.Subscribe()
	modes.MarkChanged() // draw the current screen right away
	defer modes.Close()
	ready := a.frameReady.Subscribe()
	defer ready.Close()

	var pumpWG sync.WaitGroup
	pumpWG.Add(2)
	go func() {
		defer pumpWG.Done()
		for {
			if _, err := modes.Next(ctx); err != nil {
				return
			}
			select {
			case wake <- struct{}{}:
			default:
			}
		}
	}()
	go func() {
		defer pumpWG.Done()
		for {
			if _, err := ready.Next(ctx); err != nil {
				return
			}
			select {
			case wake <- struct{}{}:
			default:
			}
		}
	}()
	defer pumpWG.Wait()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	blink := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-wake:
		case <-ticker.C:
			blink = !blink
		}

		cfg, snap := a.Snapshot()
		frame := render.Render(render.Params{
			Config:     cfg,
			Mode:       a.displayMode.Value(),
			Stones:     snap.Stones,
			Pending:    snap.Pending,
			Unreliable: snap.Unreliable,
			Blink:      blink,
		})
		a.DisplayFrames.Send(frame)
	}
}
