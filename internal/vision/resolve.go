package vision

import (
	"image"

	"goboard/internal/calibrate"
	"goboard/internal/config"
	"goboard/internal/domain/board"
)

// Empirically chosen decision thresholds; see Resolve.
const (
	emptyThreshold = 0.5
	stoneThreshold = 0.9
)

// Grid runs the classifier over every intersection of a normalized board
// frame. frame and reference must both be boardW*StoneSize by
// boardH*StoneSize images.
func Grid(c Classifier, frame, reference *image.RGBA, boardCfg config.BoardConfig) board.ProbabilityGrid {
	grid := board.NewProbabilityGrid(boardCfg.Width, boardCfg.Height)
	for y := 0; y < boardCfg.Height; y++ {
		for x := 0; x < boardCfg.Width; x++ {
			rect := image.Rect(
				x*calibrate.StoneSize, y*calibrate.StoneSize,
				(x+1)*calibrate.StoneSize, (y+1)*calibrate.StoneSize,
			)
			tile := frame.SubImage(rect).(*image.RGBA)
			refTile := reference.SubImage(rect).(*image.RGBA)
			grid.Set(board.Coord{X: x, Y: y}, c.Classify(tile, refTile))
		}
	}
	return grid
}

// Resolve turns one classifier output frame into a discrete board. An
// intersection is empty when p(empty) > 0.5, a stone when the stone
// probability exceeds 0.9, and ambiguous otherwise. A single ambiguous
// intersection invalidates the whole frame: the second return value then
// lists the ambiguous coordinates and the board is not usable. This is a
// normal outcome, not an error.
func Resolve(probs board.ProbabilityGrid) (board.ResolvedBoard, []board.Coord) {
	resolved := board.NewResolvedBoard(probs.Width, probs.Height)
	var ambiguous []board.Coord
	for y := 0; y < probs.Height; y++ {
		for x := 0; x < probs.Width; x++ {
			c := board.Coord{X: x, Y: y}
			p := probs.Get(c)
			switch {
			case p[board.ProbEmpty] > emptyThreshold:
				resolved.Set(c, board.Empty)
			case p[board.ProbBlack] > stoneThreshold:
				resolved.Set(c, board.Black)
			case p[board.ProbWhite] > stoneThreshold:
				resolved.Set(c, board.White)
			default:
				ambiguous = append(ambiguous, c)
			}
		}
	}
	if len(ambiguous) > 0 {
		return board.ResolvedBoard{}, ambiguous
	}
	return resolved, nil
}
