// Package engine reconciles the stream of resolved physical boards against
// the authoritative digital game, debouncing camera jitter with cooldowns
// and tracking unreliable intersections.
package engine

import (
	"go.uber.org/zap"

	"goboard/internal/broadcast"
	"goboard/internal/domain/board"
	"goboard/internal/domain/game"
	"goboard/internal/errors"
	"goboard/internal/vision"
)

// Intersections implicated in a rejected frame are only flagged when fewer
// than this many are involved, so a fully obscured board does not light up
// every counter.
const maxFlaggedDiff = 3

type proposal struct {
	update   game.BoardUpdate
	cooldown int
	fresh    bool
}

// Engine holds the reconciliation state for at most one game at a time.
// Callers are expected to serialize access; in the running system every
// method is invoked under the application state lock.
type Engine struct {
	log    *zap.SugaredLogger
	events *broadcast.Source[game.GameEvent]

	state        *game.GameState
	lastObserved *board.ResolvedBoard
	prop         *proposal
	troublesome  *vision.Troublesome
}

// New creates an engine publishing committed updates on the given feed.
func New(log *zap.SugaredLogger, events *broadcast.Source[game.GameEvent]) *Engine {
	return &Engine{
		log:         log,
		events:      events,
		troublesome: vision.NewTroublesome(19, 19),
	}
}

// Reset drops the game and all reconciliation state, resizing the
// troublesome grid to the new board geometry.
func (e *Engine) Reset(boardW, boardH int) {
	e.state = nil
	e.lastObserved = nil
	e.prop = nil
	e.troublesome = vision.NewTroublesome(boardW, boardH)
}

// NewGame starts a game with the physical player holding userColor.
func (e *Engine) NewGame(boardW, boardH int, userColor board.Color) {
	e.state = game.NewGame(boardW, boardH, userColor)
	e.lastObserved = nil
	e.prop = nil
	e.log.Infow("new game started", "width", boardW, "height", boardH, "user_color", userColor.String())
}

// EndGame drops the current game without touching the troublesome grid.
func (e *Engine) EndGame() {
	e.state = nil
	e.lastObserved = nil
	e.prop = nil
}

// Game returns the live game state, or nil when no game is in progress.
func (e *Engine) Game() *game.GameState { return e.state }

// Unreliable returns the intersections currently flagged as unreliable.
func (e *Engine) Unreliable() []board.Coord { return e.troublesome.Unreliable() }

// Proposal returns the candidate action currently waiting out its cooldown.
func (e *Engine) Proposal() (game.BoardUpdate, int, bool) {
	if e.prop == nil {
		return game.BoardUpdate{}, 0, false
	}
	return e.prop.update, e.prop.cooldown, true
}

// PlayExternalMove commits a remote move to the digital game and marks it
// pending physical confirmation.
func (e *Engine) PlayExternalMove(c board.Coord) error {
	if e.state == nil {
		return errors.ErrNoGame
	}
	if err := e.state.PlayExternalMove(c); err != nil {
		return err
	}
	e.prop = nil
	return nil
}

// PlayExternalPass commits a remote pass.
func (e *Engine) PlayExternalPass() error {
	if e.state == nil {
		return errors.ErrNoGame
	}
	e.state.PlayExternalPass()
	e.prop = nil
	return nil
}

// Tick processes one classifier frame. resolved is nil when resolution
// failed; ambiguous then lists the unreadable coordinates. Either way the
// troublesome counters advance and a pending proposal runs down its
// cooldown.
func (e *Engine) Tick(resolved *board.ResolvedBoard, ambiguous []board.Coord) {
	flagged := ambiguous

	if e.state != nil && resolved != nil {
		if e.lastObserved == nil || !resolved.Equal(*e.lastObserved) {
			flagged = append(flagged, e.observe(*resolved)...)
		}
	}

	e.tickCooldown()
	e.troublesome.Tick(flagged)
}

// observe reconciles a newly seen, differing board and returns any
// coordinates to flag as troublesome.
func (e *Engine) observe(resolved board.ResolvedBoard) []board.Coord {
	e.lastObserved = &resolved

	update, cooldown, ok := e.state.CheckForMove(resolved)
	if ok {
		// Any previous candidate is discarded: the cooldown restarts from
		// scratch whenever the observed board changes.
		e.prop = &proposal{update: update, cooldown: cooldown, fresh: true}
		return nil
	}

	e.prop = nil
	if e.state.PendingMove() != nil {
		// Waiting for the external move to appear on the physical board;
		// a lagging board is expected, not troublesome.
		return nil
	}
	if resolved.Equal(e.state.Board()) {
		return nil
	}
	diff := boardDiff(e.state.Board(), resolved)
	if len(diff) >= maxFlaggedDiff {
		return nil
	}
	return diff
}

func (e *Engine) tickCooldown() {
	if e.prop == nil {
		return
	}
	if e.prop.fresh {
		// The creation tick does not count against the cooldown.
		e.prop.fresh = false
		return
	}
	e.prop.cooldown--
	if e.prop.cooldown > 0 {
		return
	}
	e.commit(e.prop.update)
	e.prop = nil
}

func (e *Engine) commit(update game.BoardUpdate) {
	e.state.ApplyUpdate(update)
	evt, err := game.EventFromUpdate(update)
	if err != nil {
		e.log.Errorw("failed to encode game event", "error", err)
		return
	}
	e.log.Infow("board update committed", "type", evt.Type, "location", evt.Location, "color", evt.Color)
	e.events.Send(evt)
}

// boardDiff lists the coordinates whose contents differ between two boards.
func boardDiff(a, b board.ResolvedBoard) []board.Coord {
	var out []board.Coord
	for y := 0; y < a.Height; y++ {
		for x := 0; x < a.Width; x++ {
			c := board.Coord{X: x, Y: y}
			if a.Get(c) != b.Get(c) {
				out = append(out, c)
			}
		}
	}
	return out
}
