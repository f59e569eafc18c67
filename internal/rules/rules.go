// Package rules implements the minimal Go rules surface the reconciliation
// engine needs: legal-move validation with captures, suicide and simple ko,
// turn tracking and board equality. Scoring and game records live elsewhere.
package rules

import (
	"errors"

	"goboard/internal/domain/board"
)

var (
	ErrOccupied    = errors.New("rules: intersection is occupied")
	ErrSuicide     = errors.New("rules: move is suicide")
	ErrKo          = errors.New("rules: move retakes the ko")
	ErrOutOfBounds = errors.New("rules: coordinate is off the board")
)

// Game is an in-progress game on an NxM board.
type Game struct {
	board     board.ResolvedBoard
	prevBoard board.ResolvedBoard
	turn      board.Color
	passes    int
}

// NewGame starts a game with an empty board, Black to move.
func NewGame(width, height int) *Game {
	return &Game{
		board:     board.NewResolvedBoard(width, height),
		prevBoard: board.NewResolvedBoard(width, height),
		turn:      board.Black,
	}
}

// Board returns the current position. The caller must not mutate it.
func (g *Game) Board() board.ResolvedBoard { return g.board }

// Turn returns the color to move.
func (g *Game) Turn() board.Color { return g.turn }

// TryPlay validates a move for the color to move and returns the resulting
// board without mutating the game.
func (g *Game) TryPlay(c board.Coord) (board.ResolvedBoard, error) {
	if c.X < 0 || c.Y < 0 || c.X >= g.board.Width || c.Y >= g.board.Height {
		return board.ResolvedBoard{}, ErrOutOfBounds
	}
	if g.board.Get(c) != board.Empty {
		return board.ResolvedBoard{}, ErrOccupied
	}

	next := g.board.Clone()
	next.Set(c, g.turn)

	// Remove opponent groups left without liberties, then check suicide.
	opponent := g.turn.Opponent()
	captured := false
	for _, n := range neighbors(next, c) {
		if next.Get(n) == opponent && !hasLiberty(next, n) {
			removeGroup(next, n)
			captured = true
		}
	}
	if !hasLiberty(next, c) {
		return board.ResolvedBoard{}, ErrSuicide
	}

	// Simple ko: a single-stone capture may not immediately recreate the
	// position before the opponent's last move.
	if captured && next.Equal(g.prevBoard) {
		return board.ResolvedBoard{}, ErrKo
	}

	return next, nil
}

// Play applies a move for the color to move.
func (g *Game) Play(c board.Coord) error {
	next, err := g.TryPlay(c)
	if err != nil {
		return err
	}
	g.prevBoard = g.board
	g.board = next
	g.turn = g.turn.Opponent()
	g.passes = 0
	return nil
}

// Pass passes the turn.
func (g *Game) Pass() {
	g.prevBoard = g.board
	g.turn = g.turn.Opponent()
	g.passes++
}

// ConsecutivePasses returns how many passes have been played in a row.
func (g *Game) ConsecutivePasses() int { return g.passes }

func neighbors(b board.ResolvedBoard, c board.Coord) []board.Coord {
	out := make([]board.Coord, 0, 4)
	if c.X > 0 {
		out = append(out, board.Coord{X: c.X - 1, Y: c.Y})
	}
	if c.X < b.Width-1 {
		out = append(out, board.Coord{X: c.X + 1, Y: c.Y})
	}
	if c.Y > 0 {
		out = append(out, board.Coord{X: c.X, Y: c.Y - 1})
	}
	if c.Y < b.Height-1 {
		out = append(out, board.Coord{X: c.X, Y: c.Y + 1})
	}
	return out
}

// hasLiberty floodfills the group containing c and reports whether any stone
// of the group touches an empty intersection.
func hasLiberty(b board.ResolvedBoard, c board.Coord) bool {
	color := b.Get(c)
	seen := make(map[board.Coord]bool)
	stack := []board.Coord{c}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		for _, n := range neighbors(b, cur) {
			switch b.Get(n) {
			case board.Empty:
				return true
			case color:
				if !seen[n] {
					stack = append(stack, n)
				}
			}
		}
	}
	return false
}

// removeGroup clears the group containing c off the board.
func removeGroup(b board.ResolvedBoard, c board.Coord) {
	color := b.Get(c)
	stack := []board.Coord{c}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if b.Get(cur) != color {
			continue
		}
		b.Set(cur, board.Empty)
		for _, n := range neighbors(b, cur) {
			if b.Get(n) == color {
				stack = append(stack, n)
			}
		}
	}
}
