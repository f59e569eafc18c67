package calibrate

import (
	"math"
	"testing"

	"goboard/internal/config"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestIdentityProjectionIsIdentity(t *testing.T) {
	cfg := config.Default()
	proj := DisplayProjection(cfg.Display, cfg.Board)

	for _, p := range [][2]float64{{0, 0}, {320, 180}, {639, 359}} {
		x, y := proj.Apply(p[0], p[1])
		if !almostEqual(x, p[0]) || !almostEqual(y, p[1]) {
			t.Errorf("default projection moved (%v,%v) to (%v,%v)", p[0], p[1], x, y)
		}
	}
}

func TestProjectionTranslation(t *testing.T) {
	cfg := config.Default()
	cfg.Display.X = 0.5

	proj := DisplayProjection(cfg.Display, cfg.Board)
	// Translation is scaled by half the larger image dimension (640).
	x, y := proj.Apply(100, 100)
	if !almostEqual(x, 100+0.5*320) || !almostEqual(y, 100) {
		t.Errorf("expected (260,100), got (%v,%v)", x, y)
	}
}

func TestProjectionRotationAboutCenter(t *testing.T) {
	cfg := config.Default()
	cfg.Display.Angle = 90

	proj := DisplayProjection(cfg.Display, cfg.Board)
	// The image center must be a fixed point of the rotation.
	x, y := proj.Apply(320, 180)
	if !almostEqual(x, 320) || !almostEqual(y, 180) {
		t.Errorf("center moved under rotation: (%v,%v)", x, y)
	}
}

func TestPerspectiveFallbackToIdentityScale(t *testing.T) {
	cfg := config.Default()
	// Extreme perspective terms must never make the projection blow up.
	cfg.Display.PerspectiveX = 1e12
	cfg.Display.PerspectiveY = 1e12

	proj := DisplayProjection(cfg.Display, cfg.Board)
	x, y := proj.Apply(320, 180)
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		t.Errorf("projection produced non-finite output: (%v,%v)", x, y)
	}
}

func TestBoardDewarpMapsControlPoints(t *testing.T) {
	cfg := config.Default()
	frameW, frameH := 640, 360

	dewarp := BoardDewarp(cfg.Camera, frameW, frameH, cfg.Board)

	outW := float64(cfg.Board.Width) * StoneSize
	outH := float64(cfg.Board.Height) * StoneSize
	cases := []struct {
		src  config.Point
		x, y float64
	}{
		{cfg.Camera.TopLeft, 0.5 * StoneSize, 0.5 * StoneSize},
		{cfg.Camera.TopRight, outW - 0.5*StoneSize, 0.5 * StoneSize},
		{cfg.Camera.BottomLeft, 0.5 * StoneSize, outH - 0.5*StoneSize},
		{cfg.Camera.BottomRight, outW - 0.5*StoneSize, outH - 0.5*StoneSize},
	}
	for _, c := range cases {
		x, y := dewarp.Apply(c.src.X*float64(frameW), c.src.Y*float64(frameH))
		if math.Abs(x-c.x) > 1e-3 || math.Abs(y-c.y) > 1e-3 {
			t.Errorf("control point %+v mapped to (%v,%v), expected (%v,%v)", c.src, x, y, c.x, c.y)
		}
	}
}

func TestBoardDewarpDegenerateFallsBackToRescale(t *testing.T) {
	cfg := config.Default()
	// All four control points coincide: no projective solution exists.
	p := config.Point{X: 0.5, Y: 0.5}
	cfg.Camera.TopLeft = p
	cfg.Camera.TopRight = p
	cfg.Camera.BottomLeft = p
	cfg.Camera.BottomRight = p

	dewarp := BoardDewarp(cfg.Camera, 640, 360, cfg.Board)

	outW := float64(cfg.Board.Width) * StoneSize
	outH := float64(cfg.Board.Height) * StoneSize
	x, y := dewarp.Apply(640, 360)
	if !almostEqual(x, outW) || !almostEqual(y, outH) {
		t.Errorf("expected plain rescale to (%v,%v), got (%v,%v)", outW, outH, x, y)
	}
}

func TestStonePitchFitsBoard(t *testing.T) {
	pitch := StonePitch(640, 360, 19, 19)
	if pitch*19 > 360 {
		t.Errorf("pitch %v does not fit a 19-line board into 360px", pitch)
	}
	// The 1% shrink keeps circles at tile centers off the image edge.
	if pitch >= 360.0/19.0 {
		t.Errorf("pitch %v lacks the safety margin", pitch)
	}
}

func TestTransformInvertRoundTrip(t *testing.T) {
	tr := Translate(3, -7).Then(Scale(2, 0.5)).Then(Rotate(0.3))
	inv, ok := tr.Invert()
	if !ok {
		t.Fatal("transform unexpectedly singular")
	}
	x, y := tr.Apply(11, 13)
	rx, ry := inv.Apply(x, y)
	if !almostEqual(rx, 11) || !almostEqual(ry, 13) {
		t.Errorf("round trip gave (%v,%v)", rx, ry)
	}
}
