package game

import (
	"goboard/internal/domain/board"
	"goboard/internal/rules"
)

// Cooldowns, in reconciliation ticks, before a detected action is committed.
// Edge moves get a longer cooldown because stones there are misread more
// often. Empirically tuned.
const (
	CooldownEdgeMove     = 10
	CooldownInteriorMove = 2
	CooldownPass         = 20
	CooldownResign       = 20
	CooldownPendingMove  = 1
)

// UpdateKind classifies a board update.
type UpdateKind int

const (
	UpdateMove UpdateKind = iota
	UpdatePass
	UpdateResign
	UpdatePendingMovePlayed
)

// BoardUpdate is a detected change to the game, together with the color that
// produced it.
type BoardUpdate struct {
	Kind  UpdateKind
	Coord board.Coord // valid for UpdateMove and UpdatePendingMovePlayed
	Color board.Color
}

// GameState owns the canonical game plus which colors the physical player
// controls and an optional pending external move. Both color flags may be
// true, letting one operator play both sides.
type GameState struct {
	UserBlack bool
	UserWhite bool

	game        *rules.Game
	pendingMove *board.Coord
}

// NewGame starts a game against an external opponent: the physical player
// controls userColor, the remote side the other color.
func NewGame(width, height int, userColor board.Color) *GameState {
	return &GameState{
		UserBlack: userColor == board.Black,
		UserWhite: userColor == board.White,
		game:      rules.NewGame(width, height),
	}
}

// Board returns the current authoritative position.
func (s *GameState) Board() board.ResolvedBoard { return s.game.Board() }

// Turn returns the color to move.
func (s *GameState) Turn() board.Color { return s.game.Turn() }

// PendingMove returns the move committed digitally but not yet confirmed on
// the physical board, if any.
func (s *GameState) PendingMove() *board.Coord { return s.pendingMove }

// userTurn reports whether the physical player controls the color to move.
func (s *GameState) userTurn() bool {
	if s.game.Turn() == board.Black {
		return s.UserBlack
	}
	return s.UserWhite
}

// CheckForMove inspects a newly resolved physical board and, if it implies
// an action, returns the action and the cooldown to wait before committing
// it. It never mutates the game.
func (s *GameState) CheckForMove(observed board.ResolvedBoard) (BoardUpdate, int, bool) {
	if s.pendingMove != nil {
		return s.checkForPendingMove(observed)
	}
	if s.userTurn() {
		return s.checkForUserMove(observed)
	}
	return BoardUpdate{}, 0, false
}

func (s *GameState) checkForUserMove(observed board.ResolvedBoard) (BoardUpdate, int, bool) {
	current := s.game.Board()
	turn := s.game.Turn()

	// Stones that were not on the board as of the last known game state.
	var ownStones, otherStones []board.Coord
	for y := 0; y < observed.Height; y++ {
		for x := 0; x < observed.Width; x++ {
			c := board.Coord{X: x, Y: y}
			if current.Get(c) != board.Empty {
				continue
			}
			switch observed.Get(c) {
			case turn:
				ownStones = append(ownStones, c)
			case turn.Opponent():
				otherStones = append(otherStones, c)
			}
		}
	}

	switch {
	case len(ownStones) == 1 && s.isValidMove(ownStones[0], observed):
		cooldown := CooldownInteriorMove
		if observed.OnEdge(ownStones[0]) {
			cooldown = CooldownEdgeMove
		}
		return BoardUpdate{Kind: UpdateMove, Coord: ownStones[0], Color: turn}, cooldown, true
	case len(ownStones) == 2 && len(otherStones) == 0:
		// Two stones of the player's own color signal a pass.
		return BoardUpdate{Kind: UpdatePass, Color: turn}, CooldownPass, true
	case len(otherStones) == 2 && len(ownStones) == 0:
		// Two stones of the opponent's color signal a resignation.
		return BoardUpdate{Kind: UpdateResign, Color: turn}, CooldownResign, true
	}
	return BoardUpdate{}, 0, false
}

func (s *GameState) checkForPendingMove(observed board.ResolvedBoard) (BoardUpdate, int, bool) {
	// The digital game is ahead of the physical board; wait until the
	// physical board has caught up exactly.
	if observed.Equal(s.game.Board()) {
		return BoardUpdate{
			Kind:  UpdatePendingMovePlayed,
			Coord: *s.pendingMove,
			Color: s.game.Turn().Opponent(),
		}, CooldownPendingMove, true
	}
	return BoardUpdate{}, 0, false
}

// isValidMove replays the candidate move against the authoritative game and
// compares the result with the observed board.
func (s *GameState) isValidMove(c board.Coord, observed board.ResolvedBoard) bool {
	next, err := s.game.TryPlay(c)
	if err != nil {
		return false
	}
	return next.Equal(observed)
}

// ApplyUpdate commits an update previously returned by CheckForMove.
func (s *GameState) ApplyUpdate(u BoardUpdate) {
	switch u.Kind {
	case UpdateMove:
		_ = s.game.Play(u.Coord)
	case UpdatePass:
		s.game.Pass()
	case UpdateResign:
		// The game record is closed by the caller; nothing to replay.
	case UpdatePendingMovePlayed:
		s.pendingMove = nil
	}
}

// PlayExternalMove applies a remote move to the digital game and marks it as
// awaiting physical confirmation.
func (s *GameState) PlayExternalMove(c board.Coord) error {
	if err := s.game.Play(c); err != nil {
		return err
	}
	coord := c
	s.pendingMove = &coord
	return nil
}

// PlayExternalPass applies a remote pass. A pass has no physical stone, so
// no pending confirmation is kept.
func (s *GameState) PlayExternalPass() {
	s.game.Pass()
	s.pendingMove = nil
}
