// Package camera is a thin wrapper around the capture device. Device
// enumeration and codec concerns stay inside gocv; the rest of the system
// only sees RGBA frames.
package camera

import (
	"fmt"
	"image"
	"image/draw"
	"strconv"

	"gocv.io/x/gocv"
)

// Capture is an open capture device.
type Capture struct {
	dev *gocv.VideoCapture
	buf gocv.Mat
}

// Open opens the named device at the requested resolution. The device may
// be a numeric index or a path/URL, whichever gocv accepts.
func Open(device string, width, height int) (*Capture, error) {
	var (
		dev *gocv.VideoCapture
		err error
	)
	if id, convErr := strconv.Atoi(device); convErr == nil {
		dev, err = gocv.OpenVideoCapture(id)
	} else {
		dev, err = gocv.OpenVideoCapture(device)
	}
	if err != nil {
		return nil, fmt.Errorf("open capture device %q: %w", device, err)
	}

	dev.Set(gocv.VideoCaptureFrameWidth, float64(width))
	dev.Set(gocv.VideoCaptureFrameHeight, float64(height))

	return &Capture{dev: dev, buf: gocv.NewMat()}, nil
}

// Read grabs the next frame. ok is false when the device produced nothing.
func (c *Capture) Read() (*image.RGBA, bool) {
	if !c.dev.Read(&c.buf) || c.buf.Empty() {
		return nil, false
	}

	rgba := gocv.NewMat()
	defer rgba.Close()
	gocv.CvtColor(c.buf, &rgba, gocv.ColorBGRToRGBA)

	img, err := rgba.ToImage()
	if err != nil {
		return nil, false
	}
	if out, ok := img.(*image.RGBA); ok {
		return out, true
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out, true
}

// Close releases the device.
func (c *Capture) Close() {
	c.buf.Close()
	if c.dev != nil {
		c.dev.Close()
	}
}
