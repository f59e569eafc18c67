package rules

import (
	"testing"

	"goboard/internal/domain/board"
)

func mustPlay(t *testing.T, g *Game, x, y int) {
	t.Helper()
	if err := g.Play(board.Coord{X: x, Y: y}); err != nil {
		t.Fatalf("Play(%d,%d): %v", x, y, err)
	}
}

func TestAlternatingTurns(t *testing.T) {
	g := NewGame(9, 9)
	if g.Turn() != board.Black {
		t.Fatalf("opening turn = %v, want Black", g.Turn())
	}
	mustPlay(t, g, 2, 2)
	if g.Turn() != board.White {
		t.Fatalf("turn after one move = %v, want White", g.Turn())
	}
	if got := g.Board().Get(board.Coord{X: 2, Y: 2}); got != board.Black {
		t.Fatalf("stone = %v, want Black", got)
	}
}

func TestOccupiedAndBounds(t *testing.T) {
	g := NewGame(9, 9)
	mustPlay(t, g, 4, 4)
	if err := g.Play(board.Coord{X: 4, Y: 4}); err != ErrOccupied {
		t.Fatalf("got %v, want ErrOccupied", err)
	}
	if err := g.Play(board.Coord{X: 9, Y: 0}); err != ErrOutOfBounds {
		t.Fatalf("got %v, want ErrOutOfBounds", err)
	}
	if err := g.Play(board.Coord{X: -1, Y: 0}); err != ErrOutOfBounds {
		t.Fatalf("got %v, want ErrOutOfBounds", err)
	}
}

func TestSingleStoneCapture(t *testing.T) {
	g := NewGame(9, 9)
	// Black surrounds the white stone at (1,0) from three sides; the edge
	// closes the fourth.
	mustPlay(t, g, 0, 0) // B
	mustPlay(t, g, 1, 0) // W
	mustPlay(t, g, 2, 0) // B
	mustPlay(t, g, 8, 8) // W elsewhere
	mustPlay(t, g, 1, 1) // B captures

	if got := g.Board().Get(board.Coord{X: 1, Y: 0}); got != board.Empty {
		t.Fatalf("captured stone still on board: %v", got)
	}
}

func TestGroupCapture(t *testing.T) {
	g := NewGame(9, 9)
	// White group of two in the corner.
	mustPlay(t, g, 2, 0) // B
	mustPlay(t, g, 0, 0) // W
	mustPlay(t, g, 2, 1) // B
	mustPlay(t, g, 1, 0) // W joins
	mustPlay(t, g, 0, 1) // B
	mustPlay(t, g, 8, 8) // W elsewhere
	mustPlay(t, g, 1, 1) // B captures both

	for _, c := range []board.Coord{{X: 0, Y: 0}, {X: 1, Y: 0}} {
		if got := g.Board().Get(c); got != board.Empty {
			t.Errorf("stone at %v survived capture: %v", c, got)
		}
	}
}

func TestSuicideForbidden(t *testing.T) {
	g := NewGame(9, 9)
	// Black walls off (0,0), then White may not play into it.
	mustPlay(t, g, 1, 0) // B
	mustPlay(t, g, 8, 8) // W
	mustPlay(t, g, 0, 1) // B

	if err := g.Play(board.Coord{X: 0, Y: 0}); err != ErrSuicide {
		t.Fatalf("got %v, want ErrSuicide", err)
	}
}

func TestCaptureIsNotSuicide(t *testing.T) {
	g := NewGame(9, 9)
	// White at (0,0) with Black at (1,0): White's stone has one liberty at
	// (0,1). Black plays there, capturing rather than committing suicide
	// even though (0,1) itself starts with the corner stone adjacent.
	mustPlay(t, g, 1, 0) // B
	mustPlay(t, g, 0, 0) // W
	mustPlay(t, g, 1, 1) // B
	mustPlay(t, g, 8, 8) // W
	mustPlay(t, g, 0, 1) // B captures (0,0)

	if got := g.Board().Get(board.Coord{X: 0, Y: 0}); got != board.Empty {
		t.Fatalf("white corner stone survived: %v", got)
	}
}

func TestSimpleKo(t *testing.T) {
	g := NewGame(9, 9)
	// Classic ko shape around (1,1)/(2,1).
	mustPlay(t, g, 1, 0) // B
	mustPlay(t, g, 2, 0) // W
	mustPlay(t, g, 0, 1) // B
	mustPlay(t, g, 3, 1) // W
	mustPlay(t, g, 1, 2) // B
	mustPlay(t, g, 2, 2) // W
	mustPlay(t, g, 2, 1) // B
	mustPlay(t, g, 1, 1) // W captures (2,1)

	// Black may not immediately retake.
	if err := g.Play(board.Coord{X: 2, Y: 1}); err != ErrKo {
		t.Fatalf("got %v, want ErrKo", err)
	}

	// After a play elsewhere the ko is open again.
	mustPlay(t, g, 8, 8) // B
	mustPlay(t, g, 7, 7) // W
	if err := g.Play(board.Coord{X: 2, Y: 1}); err != nil {
		t.Fatalf("retake after ko threat: %v", err)
	}
}

func TestTryPlayDoesNotMutate(t *testing.T) {
	g := NewGame(9, 9)
	if _, err := g.TryPlay(board.Coord{X: 4, Y: 4}); err != nil {
		t.Fatalf("TryPlay: %v", err)
	}
	if got := g.Board().Get(board.Coord{X: 4, Y: 4}); got != board.Empty {
		t.Fatalf("TryPlay mutated the board: %v", got)
	}
	if g.Turn() != board.Black {
		t.Fatalf("TryPlay advanced the turn: %v", g.Turn())
	}
}

func TestPassCount(t *testing.T) {
	g := NewGame(9, 9)
	g.Pass()
	if g.ConsecutivePasses() != 1 || g.Turn() != board.White {
		t.Fatalf("after one pass: passes=%d turn=%v", g.ConsecutivePasses(), g.Turn())
	}
	g.Pass()
	if g.ConsecutivePasses() != 2 {
		t.Fatalf("passes = %d, want 2", g.ConsecutivePasses())
	}
	mustPlay(t, g, 0, 0)
	if g.ConsecutivePasses() != 0 {
		t.Fatalf("pass count not reset by a move: %d", g.ConsecutivePasses())
	}
}
