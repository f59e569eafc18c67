// Package vision hosts the tile classifier boundary and the logic resolving
// classifier output into a discrete board state.
package vision

import (
	"encoding/json"
	"fmt"
	"image"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"

	"goboard/internal/calibrate"
	"goboard/internal/domain/board"
)

// Classifier estimates the contents of a single intersection from its tile
// image and the matching tile of the empty-board reference image.
type Classifier interface {
	Classify(tile, reference *image.RGBA) board.Probabilities
}

// Network dimensions. The input is six planes: R, G, B of the tile and R, G,
// B of the reference tile.
const (
	inputPlanes        = 6
	hiddenPlanes       = 8
	intermediatePlanes = 2
	kernelSize         = 3
	hiddenNodes        = 64
	outputClasses      = 4

	tileSize = calibrate.StoneSize
	convOut  = tileSize - 2*(kernelSize-1) // spatial size after both convolutions
)

// Model is the tile classifier: two convolutional layers followed by two
// fully connected layers producing the four class scores.
type Model struct {
	conv1W []float32 // [hiddenPlanes][inputPlanes][k][k]
	conv1B []float32
	conv2W []float32 // [intermediatePlanes][hiddenPlanes][k][k]
	conv2B []float32
	fc1    *mat.Dense // hiddenNodes x (intermediatePlanes*convOut*convOut)
	fc1B   *mat.VecDense
	fc2    *mat.Dense // outputClasses x hiddenNodes
	fc2B   *mat.VecDense
}

type modelFile struct {
	Conv1Weight []float32 `json:"conv1_weight"`
	Conv1Bias   []float32 `json:"conv1_bias"`
	Conv2Weight []float32 `json:"conv2_weight"`
	Conv2Bias   []float32 `json:"conv2_bias"`
	Fc1Weight   []float64 `json:"fc1_weight"`
	Fc1Bias     []float64 `json:"fc1_bias"`
	Fc2Weight   []float64 `json:"fc2_weight"`
	Fc2Bias     []float64 `json:"fc2_bias"`
}

// LoadModel reads classifier weights from the given path. The caller treats
// a failure as fatal: the system has no useful behavior without a classifier.
func LoadModel(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model weights: %w", err)
	}
	var f modelFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse model weights: %w", err)
	}

	const fcIn = intermediatePlanes * convOut * convOut
	want := map[string][2]int{
		"conv1_weight": {len(f.Conv1Weight), hiddenPlanes * inputPlanes * kernelSize * kernelSize},
		"conv1_bias":   {len(f.Conv1Bias), hiddenPlanes},
		"conv2_weight": {len(f.Conv2Weight), intermediatePlanes * hiddenPlanes * kernelSize * kernelSize},
		"conv2_bias":   {len(f.Conv2Bias), intermediatePlanes},
		"fc1_weight":   {len(f.Fc1Weight), hiddenNodes * fcIn},
		"fc1_bias":     {len(f.Fc1Bias), hiddenNodes},
		"fc2_weight":   {len(f.Fc2Weight), outputClasses * hiddenNodes},
		"fc2_bias":     {len(f.Fc2Bias), outputClasses},
	}
	for name, got := range want {
		if got[0] != got[1] {
			return nil, fmt.Errorf("model weights: %s has %d values, expected %d", name, got[0], got[1])
		}
	}

	return &Model{
		conv1W: f.Conv1Weight,
		conv1B: f.Conv1Bias,
		conv2W: f.Conv2Weight,
		conv2B: f.Conv2Bias,
		fc1:    mat.NewDense(hiddenNodes, fcIn, f.Fc1Weight),
		fc1B:   mat.NewVecDense(hiddenNodes, f.Fc1Bias),
		fc2:    mat.NewDense(outputClasses, hiddenNodes, f.Fc2Weight),
		fc2B:   mat.NewVecDense(outputClasses, f.Fc2Bias),
	}, nil
}

// Classify runs the forward pass for one intersection and returns softmax
// probabilities for empty, black, white and obscured.
func (m *Model) Classify(tile, reference *image.RGBA) board.Probabilities {
	input := readPlanes(tile, reference)

	h1 := convolve(input, inputPlanes, tileSize, m.conv1W, m.conv1B, hiddenPlanes)
	relu(h1)
	h2 := convolve(h1, hiddenPlanes, tileSize-(kernelSize-1), m.conv2W, m.conv2B, intermediatePlanes)
	relu(h2)

	flat := mat.NewVecDense(len(h2), nil)
	for i, v := range h2 {
		flat.SetVec(i, float64(v))
	}

	var hidden mat.VecDense
	hidden.MulVec(m.fc1, flat)
	hidden.AddVec(&hidden, m.fc1B)
	for i := 0; i < hidden.Len(); i++ {
		if hidden.AtVec(i) < 0 {
			hidden.SetVec(i, 0)
		}
	}

	var out mat.VecDense
	out.MulVec(m.fc2, &hidden)
	out.AddVec(&out, m.fc2B)

	return softmax(out)
}

// readPlanes lays the tile and reference pixels out as six planes of
// normalized channel values.
func readPlanes(tile, reference *image.RGBA) []float32 {
	data := make([]float32, inputPlanes*tileSize*tileSize)
	plane := tileSize * tileSize
	for y := 0; y < tileSize; y++ {
		for x := 0; x < tileSize; x++ {
			r, g, b, _ := tile.At(tile.Rect.Min.X+x, tile.Rect.Min.Y+y).RGBA()
			rr, rg, rb, _ := reference.At(reference.Rect.Min.X+x, reference.Rect.Min.Y+y).RGBA()
			i := y*tileSize + x
			data[i] = float32(r) / 0xffff
			data[plane+i] = float32(g) / 0xffff
			data[2*plane+i] = float32(b) / 0xffff
			data[3*plane+i] = float32(rr) / 0xffff
			data[4*plane+i] = float32(rg) / 0xffff
			data[5*plane+i] = float32(rb) / 0xffff
		}
	}
	return data
}

// convolve applies a valid (no padding) convolution over square planes.
func convolve(in []float32, inPlanes, inSize int, weights, bias []float32, outPlanes int) []float32 {
	outSize := inSize - (kernelSize - 1)
	out := make([]float32, outPlanes*outSize*outSize)
	for o := 0; o < outPlanes; o++ {
		for y := 0; y < outSize; y++ {
			for x := 0; x < outSize; x++ {
				sum := bias[o]
				for p := 0; p < inPlanes; p++ {
					for ky := 0; ky < kernelSize; ky++ {
						for kx := 0; kx < kernelSize; kx++ {
							w := weights[((o*inPlanes+p)*kernelSize+ky)*kernelSize+kx]
							sum += w * in[p*inSize*inSize+(y+ky)*inSize+(x+kx)]
						}
					}
				}
				out[(o*outSize+y)*outSize+x] = sum
			}
		}
	}
	return out
}

func relu(v []float32) {
	for i, x := range v {
		if x < 0 {
			v[i] = 0
		}
	}
}

func softmax(v mat.VecDense) board.Probabilities {
	var probs board.Probabilities
	maxVal := v.AtVec(0)
	for i := 1; i < v.Len(); i++ {
		if v.AtVec(i) > maxVal {
			maxVal = v.AtVec(i)
		}
	}
	sum := 0.0
	exps := [outputClasses]float64{}
	for i := 0; i < outputClasses; i++ {
		exps[i] = math.Exp(v.AtVec(i) - maxVal)
		sum += exps[i]
	}
	for i := 0; i < outputClasses; i++ {
		probs[i] = float32(exps[i] / sum)
	}
	return probs
}
