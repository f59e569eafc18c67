// Package config holds the persisted settings of the bridge: board geometry,
// display calibration and camera calibration. Settings are stored per named
// profile; see internal/repository for persistence.
package config

import (
	"image"

	"goboard/internal/errors"
)

// Config is the full set of persisted settings.
type Config struct {
	Board   BoardConfig   `mapstructure:"board" yaml:"board" json:"board"`
	Display DisplayConfig `mapstructure:"display" yaml:"display" json:"display"`
	Camera  CameraConfig  `mapstructure:"camera" yaml:"camera" json:"camera"`
}

// BoardConfig is the geometry of the physical board.
type BoardConfig struct {
	Width  int `mapstructure:"width" yaml:"width" json:"width"`
	Height int `mapstructure:"height" yaml:"height" json:"height"`
}

// Validate rejects dimensions that would make the board unplayable.
func (b BoardConfig) Validate() error {
	if b.Width < 1 || b.Height < 1 {
		return errors.ErrInvalidBoardSize
	}
	return nil
}

// DisplayConfig positions the rendered overlay on the physical display.
type DisplayConfig struct {
	ImageWidth   int     `mapstructure:"image_width" yaml:"image_width" json:"image_width"`
	ImageHeight  int     `mapstructure:"image_height" yaml:"image_height" json:"image_height"`
	Angle        float64 `mapstructure:"angle" yaml:"angle" json:"angle"`
	X            float64 `mapstructure:"x" yaml:"x" json:"x"`
	Y            float64 `mapstructure:"y" yaml:"y" json:"y"`
	Width        float64 `mapstructure:"width" yaml:"width" json:"width"`
	Height       float64 `mapstructure:"height" yaml:"height" json:"height"`
	PerspectiveX float64 `mapstructure:"perspective_x" yaml:"perspective_x" json:"perspective_x"`
	PerspectiveY float64 `mapstructure:"perspective_y" yaml:"perspective_y" json:"perspective_y"`
}

// Validate rejects display settings without a drawable output image.
func (d DisplayConfig) Validate() error {
	if d.ImageWidth < 1 || d.ImageHeight < 1 {
		return errors.ErrInvalidDisplaySize
	}
	return nil
}

// Point is a normalized (0..1) coordinate within the camera frame.
type Point struct {
	X float64 `mapstructure:"x" yaml:"x" json:"x"`
	Y float64 `mapstructure:"y" yaml:"y" json:"y"`
}

// CameraConfig selects the capture device and the four control points used
// to dewarp the camera frame onto the normalized board image. The reference
// image is a dewarped photo of the empty board used as the classifier's
// lighting baseline; it is persisted as a PNG next to the profile and is
// invalidated whenever the board geometry changes.
type CameraConfig struct {
	Device      string `mapstructure:"device" yaml:"device" json:"device"`
	Width       int    `mapstructure:"width" yaml:"width" json:"width"`
	Height      int    `mapstructure:"height" yaml:"height" json:"height"`
	TopLeft     Point  `mapstructure:"top_left" yaml:"top_left" json:"top_left"`
	TopRight    Point  `mapstructure:"top_right" yaml:"top_right" json:"top_right"`
	BottomLeft  Point  `mapstructure:"bottom_left" yaml:"bottom_left" json:"bottom_left"`
	BottomRight Point  `mapstructure:"bottom_right" yaml:"bottom_right" json:"bottom_right"`

	Reference *image.RGBA `mapstructure:"-" yaml:"-" json:"-"`
}

// Default returns the configuration used before any profile is saved.
func Default() Config {
	return Config{
		Board: BoardConfig{Width: 19, Height: 19},
		Display: DisplayConfig{
			ImageWidth:  640,
			ImageHeight: 360,
			Width:       1.0,
			Height:      1.0,
		},
		Camera: CameraConfig{
			Width:       640,
			Height:      360,
			TopLeft:     Point{X: 0.36, Y: 0.25},
			TopRight:    Point{X: 0.64, Y: 0.25},
			BottomLeft:  Point{X: 0.36, Y: 0.75},
			BottomRight: Point{X: 0.64, Y: 0.75},
		},
	}
}
