package calibrate

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"goboard/internal/config"
)

// StoneSize is the width of a stone in pixels on the normalized board image.
const StoneSize = 16

// safetyShrink keeps circles drawn at tile centers off the image edges.
const safetyShrink = 0.99

// StonePitch returns the per-stone pixel pitch that fits the whole board
// inside the target image with uniform margins.
func StonePitch(imgW, imgH, boardW, boardH int) float64 {
	return math.Min(
		float64(imgW)/float64(boardW),
		float64(imgH)/float64(boardH),
	) * safetyShrink
}

// DisplayProjection returns the transform mapping the normalized board-grid
// rendering onto the physical display.
func DisplayProjection(display config.DisplayConfig, boardCfg config.BoardConfig) Transform {
	pitch := StonePitch(display.ImageWidth, display.ImageHeight, boardCfg.Width, boardCfg.Height)

	center := Translate(
		float64(display.ImageWidth)*-0.5,
		float64(display.ImageHeight)*-0.5,
	)

	perspective := Transform{
		{1, 0, 0},
		{0, 1, 0},
		{
			display.PerspectiveX / (pitch * float64(boardCfg.Width)),
			display.PerspectiveY / (pitch * float64(boardCfg.Height)),
			1,
		},
	}
	if _, ok := perspective.Invert(); !ok {
		perspective = Identity()
	}

	scale := Scale(display.Width, display.Height)

	translationScale := float64(max(display.ImageWidth, display.ImageHeight)) * 0.5
	translate := Translate(display.X*translationScale, display.Y*translationScale)

	rotate := Rotate(display.Angle * math.Pi / 180)

	uncenter, _ := center.Invert()

	return center.
		Then(perspective).
		Then(scale).
		Then(translate).
		Then(rotate).
		Then(uncenter)
}

// BoardDewarp returns the transform mapping the camera frame onto the
// normalized board image, from the four user-picked control points. The
// points land on the centers of the first and last playable rows and columns
// at the fixed stone pitch. Degenerate control points fall back to an
// axis-aligned rescale of the whole frame.
func BoardDewarp(camera config.CameraConfig, frameW, frameH int, boardCfg config.BoardConfig) Transform {
	outW := float64(boardCfg.Width) * StoneSize
	outH := float64(boardCfg.Height) * StoneSize

	src := [4][2]float64{
		{camera.TopLeft.X * float64(frameW), camera.TopLeft.Y * float64(frameH)},
		{camera.TopRight.X * float64(frameW), camera.TopRight.Y * float64(frameH)},
		{camera.BottomLeft.X * float64(frameW), camera.BottomLeft.Y * float64(frameH)},
		{camera.BottomRight.X * float64(frameW), camera.BottomRight.Y * float64(frameH)},
	}
	dst := [4][2]float64{
		{0.5 * StoneSize, 0.5 * StoneSize},
		{outW - 0.5*StoneSize, 0.5 * StoneSize},
		{0.5 * StoneSize, outH - 0.5*StoneSize},
		{outW - 0.5*StoneSize, outH - 0.5*StoneSize},
	}

	t, ok := homography(src, dst)
	if !ok {
		return Scale(outW/float64(frameW), outH/float64(frameH))
	}
	return t
}

// homography solves the eight-parameter projective transform mapping the
// four source points onto the four destination points.
func homography(src, dst [4][2]float64) (Transform, bool) {
	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		sx, sy := src[i][0], src[i][1]
		dx, dy := dst[i][0], dst[i][1]
		a.SetRow(i*2, []float64{sx, sy, 1, 0, 0, 0, -sx * dx, -sy * dx})
		a.SetRow(i*2+1, []float64{0, 0, 0, sx, sy, 1, -sx * dy, -sy * dy})
		b.SetVec(i*2, dx)
		b.SetVec(i*2+1, dy)
	}

	var h mat.VecDense
	if err := h.SolveVec(a, b); err != nil {
		return Identity(), false
	}

	return Transform{
		{h.AtVec(0), h.AtVec(1), h.AtVec(2)},
		{h.AtVec(3), h.AtVec(4), h.AtVec(5)},
		{h.AtVec(6), h.AtVec(7), 1},
	}, true
}
