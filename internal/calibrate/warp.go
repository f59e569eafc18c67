package calibrate

import (
	"fmt"
	"image"
	"image/draw"

	"gocv.io/x/gocv"
)

// WarpRGBA applies the transform to an RGBA image, producing an output image
// of the given size. Pixels with no source map to transparent black.
func WarpRGBA(src *image.RGBA, t Transform, outW, outH int) (*image.RGBA, error) {
	srcMat, err := gocv.ImageToMatRGBA(src)
	if err != nil {
		return nil, fmt.Errorf("convert image to mat: %w", err)
	}
	defer srcMat.Close()

	m := t.toMat()
	defer m.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.WarpPerspective(srcMat, &dst, m, image.Pt(outW, outH))

	out, err := dst.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert mat to image: %w", err)
	}
	return toRGBA(out), nil
}

func (t Transform) toMat() gocv.Mat {
	m := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.SetDoubleAt(i, j, t[i][j])
		}
	}
	return m
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}
