// Package app owns the shared application state and the lifecycle of the
// camera, vision and render tasks. All structural mutations of the
// configuration flow through here so that board geometry can never change
// underneath a running pipeline.
package app

import (
	"context"
	"image"
	"sync"

	"go.uber.org/zap"

	"goboard/internal/broadcast"
	"goboard/internal/config"
	"goboard/internal/domain/board"
	"goboard/internal/domain/game"
	"goboard/internal/engine"
	"goboard/internal/errors"
	repo "goboard/internal/repository"
	"goboard/internal/vision"
)

// App is the root of the application state.
type App struct {
	log        *zap.SugaredLogger
	profiles   *repo.ProfileStore
	recorder   *repo.GameRecorder
	classifier vision.Classifier

	// mu guards cfg and engine. Background tasks take it only for the
	// final state update of each cycle; device I/O and inference run
	// outside of it.
	mu     sync.RWMutex
	cfg    config.Config
	engine *engine.Engine

	// Broadcast endpoints. Frames are RGBA; nil until first published.
	RawFrames      *broadcast.Source[*image.RGBA]
	BoardFrames    *broadcast.Source[*image.RGBA]
	Probabilities  *broadcast.Source[board.ProbabilityGrid]
	ResolvedBoards *broadcast.Source[board.ResolvedBoard]
	DisplayFrames  *broadcast.Source[*image.RGBA]
	Events         *broadcast.Source[game.GameEvent]

	// DisplayControl hands the display mode to exactly one controller.
	displayMode    *broadcast.Source[game.DisplayMode]
	DisplayControl *broadcast.OwnedSource[game.DisplayMode]

	// Internal wake signals.
	frameReady   *broadcast.Source[struct{}]
	cameraReload *broadcast.Source[struct{}]

	// Stream-claim accounting: readers hold shared claims for the
	// lifetime of a stream attachment; board-geometry mutations need the
	// claim count to be zero and set exclusive for their whole duration,
	// so a reader can never attach mid-mutation.
	claimMu   sync.Mutex
	claims    int
	exclusive bool

	rootCtx    context.Context
	rootCancel context.CancelFunc

	tasksMu     sync.Mutex
	tasksCancel context.CancelFunc
	tasksWG     *sync.WaitGroup
}

// New assembles the application around an already-loaded classifier.
func New(log *zap.SugaredLogger, profiles *repo.ProfileStore, recorder *repo.GameRecorder, classifier vision.Classifier) *App {
	rootCtx, rootCancel := context.WithCancel(context.Background())

	cfg, err := profiles.Load(repo.DefaultProfile)
	if err != nil {
		cfg = config.Default()
		log.Infow("no default profile, starting from built-in settings")
	}

	events := broadcast.NewSource(game.GameEvent{})
	displayMode := broadcast.NewSource(game.DisplayMode{})

	a := &App{
		log:        log,
		profiles:   profiles,
		recorder:   recorder,
		classifier: classifier,
		cfg:        cfg,
		engine:     engine.New(log, events),

		RawFrames:      broadcast.NewSource[*image.RGBA](nil),
		BoardFrames:    broadcast.NewSource[*image.RGBA](nil),
		Probabilities:  broadcast.NewSource(board.ProbabilityGrid{}),
		ResolvedBoards: broadcast.NewSource(board.ResolvedBoard{}),
		DisplayFrames:  broadcast.NewSource[*image.RGBA](nil),
		Events:         events,

		displayMode:    displayMode,
		DisplayControl: broadcast.NewOwnedSource(displayMode),

		frameReady:   broadcast.NewSource(struct{}{}),
		cameraReload: broadcast.NewSource(struct{}{}),

		rootCtx:    rootCtx,
		rootCancel: rootCancel,
	}
	a.engine.Reset(cfg.Board.Width, cfg.Board.Height)
	return a
}

// Start launches the background tasks.
func (a *App) Start() {
	a.startTasks()
}

// Close stops the tasks and fails every stream.
func (a *App) Close() {
	a.rootCancel()
	a.stopTasks()
	for _, src := range []interface{ Close() }{
		a.RawFrames, a.BoardFrames, a.Probabilities, a.ResolvedBoards,
		a.DisplayFrames, a.Events, a.displayMode, a.frameReady, a.cameraReload,
	} {
		src.Close()
	}
}

// Config returns a snapshot of the current configuration.
func (a *App) Config() config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// DisplayMode returns the currently published display mode.
func (a *App) DisplayMode() game.DisplayMode {
	return a.displayMode.Value()
}

// AcquireStream takes a shared claim for the lifetime of one stream
// attachment. It fails with ErrResourceInUse while an exclusive mutation is
// running. The returned release function is idempotent.
func (a *App) AcquireStream() (func(), error) {
	a.claimMu.Lock()
	if a.exclusive {
		a.claimMu.Unlock()
		return nil, errors.ErrResourceInUse
	}
	a.claims++
	a.claimMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.claimMu.Lock()
			a.claims--
			a.claimMu.Unlock()
		})
	}, nil
}

// withExclusive runs fn with every background task stopped. It fails
// immediately with ErrResourceInUse while any stream claim is held, blocks
// new claims until fn returns, and restarts the tasks on every exit path,
// error or not.
func (a *App) withExclusive(fn func() error) error {
	a.claimMu.Lock()
	if a.claims > 0 {
		a.claimMu.Unlock()
		return errors.ErrResourceInUse
	}
	a.exclusive = true
	a.claimMu.Unlock()

	defer func() {
		a.claimMu.Lock()
		a.exclusive = false
		a.claimMu.Unlock()
	}()

	a.stopTasks()
	defer a.startTasks()

	return fn()
}

// SetDisplayConfig applies new display settings without stopping tasks; the
// renderer reacts on its next wake.
func (a *App) SetDisplayConfig(d config.DisplayConfig) error {
	if err := d.Validate(); err != nil {
		return err
	}
	a.mu.Lock()
	a.cfg.Display = d
	cfg := a.cfg
	a.mu.Unlock()

	a.frameReady.Send(struct{}{})
	a.persist(cfg)
	return nil
}

// SetCameraConfig applies new capture settings without stopping tasks; the
// camera task re-opens the device on its next tick. The reference image is
// carried over, since board geometry is unchanged.
func (a *App) SetCameraConfig(c config.CameraConfig) error {
	a.mu.Lock()
	c.Reference = a.cfg.Camera.Reference
	a.cfg.Camera = c
	cfg := a.cfg
	a.mu.Unlock()

	a.cameraReload.Send(struct{}{})
	a.persist(cfg)
	return nil
}

// SetBoardConfig changes the board geometry. This invalidates the reference
// image and any in-progress game, so it requires exclusive access: it fails
// with ErrResourceInUse while any camera/board stream consumer is attached.
func (a *App) SetBoardConfig(b config.BoardConfig) error {
	if err := b.Validate(); err != nil {
		return err
	}
	return a.withExclusive(func() error {
		a.mu.Lock()
		a.cfg.Board = b
		a.cfg.Camera.Reference = nil
		a.engine.Reset(b.Width, b.Height)
		cfg := a.cfg
		a.mu.Unlock()

		a.recorder.Abort(a.rootCtx)
		a.persist(cfg)
		return nil
	})
}

// ListProfiles returns the saved profile names.
func (a *App) ListProfiles() ([]string, error) {
	return a.profiles.List()
}

// SaveProfile stores the current configuration under the given name.
func (a *App) SaveProfile(name string) error {
	return a.profiles.Save(name, a.Config())
}

// DeleteProfile removes a stored profile.
func (a *App) DeleteProfile(name string) error {
	return a.profiles.Delete(name)
}

// LoadProfile replaces the whole configuration from a stored profile. Like
// a board resize, it requires exclusive access.
func (a *App) LoadProfile(name string) error {
	loaded, err := a.profiles.Load(name)
	if err != nil {
		return err
	}
	return a.withExclusive(func() error {
		a.mu.Lock()
		a.cfg = loaded
		a.engine.Reset(loaded.Board.Width, loaded.Board.Height)
		a.mu.Unlock()

		a.recorder.Abort(a.rootCtx)
		a.persist(loaded)
		return nil
	})
}

// CaptureReference stores the most recent dewarped board frame as the
// classifier's lighting baseline.
func (a *App) CaptureReference() error {
	frame := a.BoardFrames.Value()
	if frame == nil {
		return errors.ErrCameraUnavailable
	}
	a.mu.Lock()
	a.cfg.Camera.Reference = frame
	cfg := a.cfg
	a.mu.Unlock()

	a.persist(cfg)
	return nil
}

// ClearReference drops the reference image.
func (a *App) ClearReference() error {
	a.mu.Lock()
	a.cfg.Camera.Reference = nil
	cfg := a.cfg
	a.mu.Unlock()

	a.persist(cfg)
	return nil
}

// persist auto-saves the default profile after a successful mutation.
func (a *App) persist(cfg config.Config) {
	if err := a.profiles.Save(repo.DefaultProfile, cfg); err != nil {
		a.log.Errorw("failed to persist configuration", "error", err)
	}
}

// NewGame starts a game with the physical player holding userColor.
func (a *App) NewGame(userColor board.Color) {
	a.mu.Lock()
	b := a.cfg.Board
	a.engine.NewGame(b.Width, b.Height, userColor)
	a.mu.Unlock()

	a.recorder.Abort(a.rootCtx)
	a.recorder.Start(a.rootCtx, b.Width, b.Height, string(userColor.Code()))
	a.frameReady.Send(struct{}{})
}

// EndGame finishes the current game with the given winner.
func (a *App) EndGame(winner board.Color) error {
	a.mu.Lock()
	if a.engine.Game() == nil {
		a.mu.Unlock()
		return errors.ErrNoGame
	}
	a.engine.EndGame()
	a.mu.Unlock()

	result := "Void"
	if winner != board.Empty {
		result = string(winner.Code()) + "+"
	}
	a.recorder.Finish(a.rootCtx, result)
	a.frameReady.Send(struct{}{})
	return nil
}

// PlayExternalMove records a remote move; the physical board confirms it
// later via the pending-move logic.
func (a *App) PlayExternalMove(c board.Coord) error {
	a.mu.Lock()
	err := a.engine.PlayExternalMove(c)
	a.mu.Unlock()
	if err != nil {
		return err
	}
	a.frameReady.Send(struct{}{})
	return nil
}

// PlayExternalPass records a remote pass.
func (a *App) PlayExternalPass() error {
	a.mu.Lock()
	err := a.engine.PlayExternalPass()
	a.mu.Unlock()
	if err != nil {
		return err
	}
	a.frameReady.Send(struct{}{})
	return nil
}

// GameSnapshot is the game-dependent portion of a render wake.
type GameSnapshot struct {
	Stones     *board.ResolvedBoard
	Pending    *board.Coord
	Unreliable []board.Coord
}

// Snapshot collects everything the renderer needs under one read lock.
func (a *App) Snapshot() (config.Config, GameSnapshot) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	snap := GameSnapshot{Unreliable: a.engine.Unreliable()}
	if g := a.engine.Game(); g != nil {
		b := g.Board().Clone()
		snap.Stones = &b
		snap.Pending = g.PendingMove()
	}
	return a.cfg, snap
}
