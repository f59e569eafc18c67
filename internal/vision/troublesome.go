package vision

import "goboard/internal/domain/board"

// Troublesome counter tuning. A flagged intersection climbs by flagStep per
// tick up to counterCap and decays by one per clean tick; consumers treat
// counters at or above unreliableAt as currently unreliable.
const (
	counterCap   = 20
	flagStep     = 3
	unreliableAt = 10
)

// Troublesome tracks intersections whose recent readings have been
// unreliable. It is purely a UI-feedback signal and never affects game
// legality.
type Troublesome struct {
	width    int
	height   int
	counters []uint8
}

// NewTroublesome returns a zeroed grid of counters.
func NewTroublesome(width, height int) *Troublesome {
	return &Troublesome{
		width:    width,
		height:   height,
		counters: make([]uint8, width*height),
	}
}

// Tick advances one processing tick: every coordinate in flagged is bumped
// and every other coordinate decays.
func (t *Troublesome) Tick(flagged []board.Coord) {
	bumped := make(map[int]bool, len(flagged))
	for _, c := range flagged {
		if c.X < 0 || c.Y < 0 || c.X >= t.width || c.Y >= t.height {
			continue
		}
		i := c.Y*t.width + c.X
		bumped[i] = true
		if t.counters[i] > counterCap-flagStep {
			t.counters[i] = counterCap
		} else {
			t.counters[i] += flagStep
		}
	}
	for i := range t.counters {
		if !bumped[i] && t.counters[i] > 0 {
			t.counters[i]--
		}
	}
}

// Unreliable returns the coordinates currently considered unreliable.
func (t *Troublesome) Unreliable() []board.Coord {
	var out []board.Coord
	for i, v := range t.counters {
		if v >= unreliableAt {
			out = append(out, board.Coord{X: i % t.width, Y: i / t.width})
		}
	}
	return out
}

// Counter returns the raw counter value at a coordinate.
func (t *Troublesome) Counter(c board.Coord) uint8 {
	return t.counters[c.Y*t.width+c.X]
}
