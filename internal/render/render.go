// Package render draws the calibration, training and game overlays shown on
// the physical display. Drawing happens on a normalized, axis-aligned board
// image which is then warped into display space by the calibration
// projection.
package render

import (
	"image"
	"image/color"
	"math/rand"

	"goboard/internal/calibrate"
	"goboard/internal/config"
	"goboard/internal/domain/board"
	"goboard/internal/domain/game"
)

// Params is one renderer wake's snapshot of everything the display depends
// on.
type Params struct {
	Config config.Config
	Mode   game.DisplayMode

	// Game overlay inputs; only read in ModeGame.
	Stones     *board.ResolvedBoard
	Pending    *board.Coord
	Unreliable []board.Coord

	// Blink drives the 1 Hz expose/hide cycle of the pending-move and
	// troublesome indicators.
	Blink bool
}

var (
	colDot        = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colMarker     = color.RGBA{R: 255, A: 255}
	colBlackStone = color.RGBA{R: 32, G: 32, B: 32, A: 255}
	colWhiteStone = color.RGBA{R: 240, G: 240, B: 240, A: 255}
	colPending    = color.RGBA{R: 64, G: 160, B: 255, A: 255}
	colTrouble    = color.RGBA{R: 255, G: 180, A: 255}
)

// Render produces the display frame for the given snapshot.
func Render(p Params) *image.RGBA {
	raw := renderRaw(p)
	proj := calibrate.DisplayProjection(p.Config.Display, p.Config.Board)
	warped, err := calibrate.WarpRGBA(raw, proj, p.Config.Display.ImageWidth, p.Config.Display.ImageHeight)
	if err != nil {
		return raw
	}
	return warped
}

// renderRaw draws the normalized, unwarped board image.
func renderRaw(p Params) *image.RGBA {
	d := p.Config.Display
	b := p.Config.Board
	img := image.NewRGBA(image.Rect(0, 0, d.ImageWidth, d.ImageHeight))

	g := newGeometry(d, b)

	switch p.Mode.Kind {
	case game.ModeTraining:
		g.drawTrainingPattern(img, p.Mode.Pattern)
	case game.ModeGame:
		g.drawGame(img, p)
	default:
		// The default and calibration screens both show the alignment
		// grid; the camera-side calibration UI reads it off the display.
		g.drawGrid(img)
	}
	return img
}

// geometry places intersection centers on the output image.
type geometry struct {
	board   config.BoardConfig
	pitch   float64
	originX float64
	originY float64
}

func newGeometry(d config.DisplayConfig, b config.BoardConfig) geometry {
	pitch := calibrate.StonePitch(d.ImageWidth, d.ImageHeight, b.Width, b.Height)
	return geometry{
		board:   b,
		pitch:   pitch,
		originX: (float64(d.ImageWidth) - pitch*float64(b.Width)) * 0.5,
		originY: (float64(d.ImageHeight) - pitch*float64(b.Height)) * 0.5,
	}
}

func (g geometry) center(c board.Coord) (int, int) {
	return int(g.originX + (float64(c.X)+0.5)*g.pitch),
		int(g.originY + (float64(c.Y)+0.5)*g.pitch)
}

// drawGrid dots every intersection and marks the upper-right corner so the
// operator can confirm the display orientation.
func (g geometry) drawGrid(img *image.RGBA) {
	for y := 0; y < g.board.Height; y++ {
		for x := 0; x < g.board.Width; x++ {
			cx, cy := g.center(board.Coord{X: x, Y: y})
			fillCircle(img, cx, cy, int(g.pitch*0.125), colDot)
		}
	}
	cx, cy := g.center(board.Coord{X: g.board.Width - 1, Y: 0})
	fillCircle(img, cx, cy, int(g.pitch*0.25), colMarker)
}

// drawTrainingPattern scatters stones deterministically from the pattern
// seed, so the vision side can label tiles against a known layout.
func (g geometry) drawTrainingPattern(img *image.RGBA, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for y := 0; y < g.board.Height; y++ {
		for x := 0; x < g.board.Width; x++ {
			cx, cy := g.center(board.Coord{X: x, Y: y})
			switch rng.Intn(3) {
			case 0:
				fillCircle(img, cx, cy, int(g.pitch*0.45), colBlackStone)
			case 1:
				fillCircle(img, cx, cy, int(g.pitch*0.45), colWhiteStone)
			default:
				fillCircle(img, cx, cy, int(g.pitch*0.125), colDot)
			}
		}
	}
}

// drawGame shows the authoritative position with the blink-phase overlays.
func (g geometry) drawGame(img *image.RGBA, p Params) {
	if p.Stones != nil {
		for y := 0; y < p.Stones.Height; y++ {
			for x := 0; x < p.Stones.Width; x++ {
				c := board.Coord{X: x, Y: y}
				cx, cy := g.center(c)
				switch p.Stones.Get(c) {
				case board.Black:
					fillCircle(img, cx, cy, int(g.pitch*0.45), colBlackStone)
				case board.White:
					fillCircle(img, cx, cy, int(g.pitch*0.45), colWhiteStone)
				default:
					fillCircle(img, cx, cy, int(g.pitch*0.08), colDot)
				}
			}
		}
	}

	if !p.Blink {
		return
	}
	// Blink phase: highlight the move waiting to be placed and any
	// intersections the camera cannot read reliably.
	if p.Pending != nil {
		cx, cy := g.center(*p.Pending)
		drawRing(img, cx, cy, int(g.pitch*0.5), int(g.pitch*0.38), colPending)
	}
	for _, c := range p.Unreliable {
		cx, cy := g.center(c)
		drawRing(img, cx, cy, int(g.pitch*0.5), int(g.pitch*0.4), colTrouble)
	}
}

func fillCircle(img *image.RGBA, cx, cy, r int, col color.RGBA) {
	if r < 1 {
		r = 1
	}
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(cx+dx, cy+dy, col)
			}
		}
	}
}

func drawRing(img *image.RGBA, cx, cy, outer, inner int, col color.RGBA) {
	for dy := -outer; dy <= outer; dy++ {
		for dx := -outer; dx <= outer; dx++ {
			d := dx*dx + dy*dy
			if d <= outer*outer && d >= inner*inner {
				img.SetRGBA(cx+dx, cy+dy, col)
			}
		}
	}
}
