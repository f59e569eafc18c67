package board

import "fmt"

const sgfChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// SgfCoord encodes a coordinate in the two-letter SGF notation used on the
// control and game feeds.
func SgfCoord(c Coord) (string, error) {
	if c.X < 0 || c.X >= len(sgfChars) || c.Y < 0 || c.Y >= len(sgfChars) {
		return "", fmt.Errorf("coordinate (%d,%d) out of sgf range", c.X, c.Y)
	}
	return string([]byte{sgfChars[c.X], sgfChars[c.Y]}), nil
}

// ParseSgfCoord decodes a two-letter SGF coordinate.
func ParseSgfCoord(s string) (Coord, error) {
	if len(s) != 2 {
		return Coord{}, fmt.Errorf("invalid sgf coordinate %q", s)
	}
	x := indexOf(s[0])
	y := indexOf(s[1])
	if x < 0 || y < 0 {
		return Coord{}, fmt.Errorf("invalid sgf coordinate %q", s)
	}
	return Coord{X: x, Y: y}, nil
}

func indexOf(b byte) int {
	for i := 0; i < len(sgfChars); i++ {
		if sgfChars[i] == b {
			return i
		}
	}
	return -1
}

// ParseColor decodes the one-letter color code used on the wire ("B"/"W",
// case-insensitive, full words accepted).
func ParseColor(s string) (Color, error) {
	if len(s) == 0 {
		return Empty, fmt.Errorf("empty color")
	}
	switch s[0] {
	case 'B', 'b':
		return Black, nil
	case 'W', 'w':
		return White, nil
	}
	return Empty, fmt.Errorf("invalid color %q", s)
}
