package game

import (
	"testing"

	"goboard/internal/domain/board"
)

func observedWith(s *GameState, stones ...struct {
	c   board.Coord
	col board.Color
}) board.ResolvedBoard {
	b := s.Board().Clone()
	for _, st := range stones {
		b.Set(st.c, st.col)
	}
	return b
}

func stone(x, y int, col board.Color) struct {
	c   board.Coord
	col board.Color
} {
	return struct {
		c   board.Coord
		col board.Color
	}{board.Coord{X: x, Y: y}, col}
}

func TestSingleOwnStoneIsMove(t *testing.T) {
	s := NewGame(9, 9, board.Black)
	observed := observedWith(s, stone(4, 4, board.Black))

	update, cooldown, ok := s.CheckForMove(observed)
	if !ok {
		t.Fatal("move not detected")
	}
	if update.Kind != UpdateMove || update.Coord != (board.Coord{X: 4, Y: 4}) || update.Color != board.Black {
		t.Fatalf("update = %+v", update)
	}
	if cooldown != CooldownInteriorMove {
		t.Fatalf("cooldown = %d, want %d", cooldown, CooldownInteriorMove)
	}
}

func TestEdgeMoveGetsLongerCooldown(t *testing.T) {
	s := NewGame(9, 9, board.Black)
	observed := observedWith(s, stone(0, 4, board.Black))

	_, cooldown, ok := s.CheckForMove(observed)
	if !ok {
		t.Fatal("move not detected")
	}
	if cooldown != CooldownEdgeMove {
		t.Fatalf("cooldown = %d, want %d", cooldown, CooldownEdgeMove)
	}
}

func TestOpponentStoneOnUserTurnIsNotAMove(t *testing.T) {
	s := NewGame(9, 9, board.Black)
	observed := observedWith(s, stone(4, 4, board.White))

	if _, _, ok := s.CheckForMove(observed); ok {
		t.Fatal("opponent stone accepted as user move")
	}
}

func TestTwoOwnStonesSignalPass(t *testing.T) {
	s := NewGame(9, 9, board.Black)
	observed := observedWith(s, stone(2, 2, board.Black), stone(6, 6, board.Black))

	update, cooldown, ok := s.CheckForMove(observed)
	if !ok || update.Kind != UpdatePass || update.Color != board.Black {
		t.Fatalf("update = %+v, ok = %v", update, ok)
	}
	if cooldown != CooldownPass {
		t.Fatalf("cooldown = %d, want %d", cooldown, CooldownPass)
	}
}

func TestTwoOpponentStonesSignalResign(t *testing.T) {
	s := NewGame(9, 9, board.Black)
	observed := observedWith(s, stone(2, 2, board.White), stone(6, 6, board.White))

	update, cooldown, ok := s.CheckForMove(observed)
	if !ok || update.Kind != UpdateResign || update.Color != board.Black {
		t.Fatalf("update = %+v, ok = %v", update, ok)
	}
	if cooldown != CooldownResign {
		t.Fatalf("cooldown = %d, want %d", cooldown, CooldownResign)
	}
}

func TestMixedNewStonesAreNoSignal(t *testing.T) {
	s := NewGame(9, 9, board.Black)
	observed := observedWith(s, stone(2, 2, board.Black), stone(6, 6, board.White))

	if _, _, ok := s.CheckForMove(observed); ok {
		t.Fatal("mixed colors accepted as a signal")
	}
}

func TestNotUsersTurn(t *testing.T) {
	s := NewGame(9, 9, board.White) // Black to move, controlled externally
	observed := observedWith(s, stone(4, 4, board.Black))

	if _, _, ok := s.CheckForMove(observed); ok {
		t.Fatal("user move accepted on external turn")
	}
}

func TestPendingMoveConfirmation(t *testing.T) {
	s := NewGame(9, 9, board.White)
	if err := s.PlayExternalMove(board.Coord{X: 4, Y: 4}); err != nil {
		t.Fatalf("PlayExternalMove: %v", err)
	}
	if s.PendingMove() == nil {
		t.Fatal("no pending move recorded")
	}

	// Board not yet caught up: no signal even though it is the user's turn.
	stale := board.NewResolvedBoard(9, 9)
	if _, _, ok := s.CheckForMove(stale); ok {
		t.Fatal("pending move confirmed on a stale board")
	}

	update, cooldown, ok := s.CheckForMove(s.Board().Clone())
	if !ok || update.Kind != UpdatePendingMovePlayed {
		t.Fatalf("update = %+v, ok = %v", update, ok)
	}
	if update.Coord != (board.Coord{X: 4, Y: 4}) || update.Color != board.Black {
		t.Fatalf("update = %+v", update)
	}
	if cooldown != CooldownPendingMove {
		t.Fatalf("cooldown = %d, want %d", cooldown, CooldownPendingMove)
	}

	s.ApplyUpdate(update)
	if s.PendingMove() != nil {
		t.Fatal("pending move survived confirmation")
	}
}

func TestApplyMoveAdvancesTurn(t *testing.T) {
	s := NewGame(9, 9, board.Black)
	update := BoardUpdate{Kind: UpdateMove, Coord: board.Coord{X: 4, Y: 4}, Color: board.Black}
	s.ApplyUpdate(update)

	if s.Turn() != board.White {
		t.Fatalf("turn = %v, want White", s.Turn())
	}
	if got := s.Board().Get(board.Coord{X: 4, Y: 4}); got != board.Black {
		t.Fatalf("stone = %v, want Black", got)
	}
}

func TestCapturedMoveValidatedAgainstReplay(t *testing.T) {
	// Set up a position where Black's move captures a white stone. The
	// observed board must show the capture for the move to be accepted.
	s := NewGame(9, 9, board.Black)
	s.ApplyUpdate(BoardUpdate{Kind: UpdateMove, Coord: board.Coord{X: 0, Y: 0}, Color: board.Black}) // B
	s.ApplyUpdate(BoardUpdate{Kind: UpdateMove, Coord: board.Coord{X: 1, Y: 0}, Color: board.White}) // W
	s.ApplyUpdate(BoardUpdate{Kind: UpdateMove, Coord: board.Coord{X: 2, Y: 0}, Color: board.Black}) // B
	s.ApplyUpdate(BoardUpdate{Kind: UpdateMove, Coord: board.Coord{X: 8, Y: 8}, Color: board.White}) // W
	s.UserBlack, s.UserWhite = true, false

	// Observed board with the capturing stone but the captured white stone
	// still present: rejected.
	wrong := observedWith(s, stone(1, 1, board.Black))
	if _, _, ok := s.CheckForMove(wrong); ok {
		t.Fatal("move accepted without the capture on the board")
	}

	// Observed board reflecting the capture: accepted.
	right := wrong.Clone()
	right.Set(board.Coord{X: 1, Y: 0}, board.Empty)
	update, _, ok := s.CheckForMove(right)
	if !ok || update.Kind != UpdateMove || update.Coord != (board.Coord{X: 1, Y: 1}) {
		t.Fatalf("update = %+v, ok = %v", update, ok)
	}
}

func TestBothColorsControlled(t *testing.T) {
	s := NewGame(9, 9, board.Black)
	s.UserWhite = true

	s.ApplyUpdate(BoardUpdate{Kind: UpdateMove, Coord: board.Coord{X: 4, Y: 4}, Color: board.Black})
	observed := observedWith(s, stone(5, 5, board.White))
	update, _, ok := s.CheckForMove(observed)
	if !ok || update.Color != board.White {
		t.Fatalf("update = %+v, ok = %v", update, ok)
	}
}
