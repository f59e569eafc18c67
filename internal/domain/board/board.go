package board

// Color is the content of one intersection.
type Color int

const (
	Empty Color = iota
	Black
	White
)

// Opponent returns the other player color. Empty is returned unchanged.
func (c Color) Opponent() Color {
	switch c {
	case Black:
		return White
	case White:
		return Black
	}
	return c
}

// Code returns the single-character wire encoding of a cell.
func (c Color) Code() byte {
	switch c {
	case Black:
		return 'B'
	case White:
		return 'W'
	}
	return ' '
}

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case White:
		return "white"
	}
	return "empty"
}

// Coord is an intersection on the board, zero-based, x growing right and
// y growing down.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ResolvedBoard is the discrete state of every intersection at one point in
// time. Two boards are equal iff every cell matches.
type ResolvedBoard struct {
	Width  int
	Height int
	cells  []Color
}

// NewResolvedBoard returns an all-empty board of the given dimensions.
func NewResolvedBoard(width, height int) ResolvedBoard {
	return ResolvedBoard{
		Width:  width,
		Height: height,
		cells:  make([]Color, width*height),
	}
}

func (b ResolvedBoard) Get(c Coord) Color {
	return b.cells[c.Y*b.Width+c.X]
}

func (b ResolvedBoard) Set(c Coord, col Color) {
	b.cells[c.Y*b.Width+c.X] = col
}

// Equal reports whether every cell of both boards matches.
func (b ResolvedBoard) Equal(other ResolvedBoard) bool {
	if b.Width != other.Width || b.Height != other.Height {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the board.
func (b ResolvedBoard) Clone() ResolvedBoard {
	out := NewResolvedBoard(b.Width, b.Height)
	copy(out.cells, b.cells)
	return out
}

// Rows encodes the board as one string per row using the single-character
// cell codes (space, B, W).
func (b ResolvedBoard) Rows() []string {
	rows := make([]string, b.Height)
	for y := 0; y < b.Height; y++ {
		line := make([]byte, b.Width)
		for x := 0; x < b.Width; x++ {
			line[x] = b.Get(Coord{X: x, Y: y}).Code()
		}
		rows[y] = string(line)
	}
	return rows
}

// OnEdge reports whether the coordinate lies on the outer ring of the board.
func (b ResolvedBoard) OnEdge(c Coord) bool {
	return c.X == 0 || c.Y == 0 || c.X == b.Width-1 || c.Y == b.Height-1
}

// Probabilities is the classifier estimate for a single intersection:
// empty, black, white, obscured, each in [0,1].
type Probabilities [4]float32

const (
	ProbEmpty = iota
	ProbBlack
	ProbWhite
	ProbObscured
)

// ProbabilityGrid is one classifier output frame.
type ProbabilityGrid struct {
	Width  int
	Height int
	cells  []Probabilities
}

func NewProbabilityGrid(width, height int) ProbabilityGrid {
	return ProbabilityGrid{
		Width:  width,
		Height: height,
		cells:  make([]Probabilities, width*height),
	}
}

func (g ProbabilityGrid) Get(c Coord) Probabilities {
	return g.cells[c.Y*g.Width+c.X]
}

func (g ProbabilityGrid) Set(c Coord, p Probabilities) {
	g.cells[c.Y*g.Width+c.X] = p
}

// Nested returns the grid as nested arrays, row-major, for the JSON stream.
func (g ProbabilityGrid) Nested() [][][4]float32 {
	out := make([][][4]float32, g.Height)
	for y := 0; y < g.Height; y++ {
		row := make([][4]float32, g.Width)
		for x := 0; x < g.Width; x++ {
			row[x] = g.Get(Coord{X: x, Y: y})
		}
		out[y] = row
	}
	return out
}
