// Package calibrate builds the projective transforms between the normalized
// board image, the physical display and the camera frame.
package calibrate

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Transform is a 2-D projective transform, row-major.
type Transform [3][3]float64

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Translate returns a translation by (tx, ty).
func Translate(tx, ty float64) Transform {
	return Transform{{1, 0, tx}, {0, 1, ty}, {0, 0, 1}}
}

// Scale returns an anisotropic scale.
func Scale(sx, sy float64) Transform {
	return Transform{{sx, 0, 0}, {0, sy, 0}, {0, 0, 1}}
}

// Rotate returns a rotation about the origin by the given angle in radians.
func Rotate(rad float64) Transform {
	s, c := math.Sin(rad), math.Cos(rad)
	return Transform{{c, -s, 0}, {s, c, 0}, {0, 0, 1}}
}

// Then composes t followed by next (next ∘ t).
func (t Transform) Then(next Transform) Transform {
	var out Transform
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			sum := 0.0
			for k := 0; k < 3; k++ {
				sum += next[i][k] * t[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// Apply maps a point through the transform.
func (t Transform) Apply(x, y float64) (float64, float64) {
	w := t[2][0]*x + t[2][1]*y + t[2][2]
	if w == 0 {
		return 0, 0
	}
	return (t[0][0]*x + t[0][1]*y + t[0][2]) / w,
		(t[1][0]*x + t[1][1]*y + t[1][2]) / w
}

// Invert returns the inverse transform. ok is false when the matrix is
// singular.
func (t Transform) Invert() (Transform, bool) {
	m := mat.NewDense(3, 3, []float64{
		t[0][0], t[0][1], t[0][2],
		t[1][0], t[1][1], t[1][2],
		t[2][0], t[2][1], t[2][2],
	})
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return Identity(), false
	}
	var out Transform
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = inv.At(i, j)
		}
	}
	return out, true
}
