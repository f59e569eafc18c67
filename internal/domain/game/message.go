package game

import (
	"encoding/json"
	"fmt"

	"goboard/internal/domain/board"
)

// Control message types accepted on the control socket.
const (
	CtlReset              = "reset"
	CtlNewTrainingPattern = "new_training_pattern"
	CtlNewGame            = "new_game"
	CtlPlayMove           = "play_move"
	CtlPlayPass           = "play_pass"
	CtlEndGame            = "end_game"
)

// ControlMessage is the tagged message protocol driving the display and the
// game from an external controller.
type ControlMessage struct {
	Type      string `json:"type"`
	UserColor string `json:"user_color,omitempty"` // new_game
	Location  string `json:"location,omitempty"`   // play_move, sgf notation
	Winner    string `json:"winner,omitempty"`     // end_game
}

// Event types published on the game feed.
const (
	EvtMove              = "move"
	EvtPass              = "pass"
	EvtResign            = "resign"
	EvtPendingMovePlayed = "pending_move_played"
)

// GameEvent is one entry on the move/pass/resign feed.
type GameEvent struct {
	Type     string `json:"type"`
	Location string `json:"location,omitempty"`
	Color    string `json:"color,omitempty"`
}

// EventFromUpdate converts a committed board update into its feed
// representation.
func EventFromUpdate(u BoardUpdate) (GameEvent, error) {
	evt := GameEvent{Color: colorCode(u.Color)}
	switch u.Kind {
	case UpdateMove:
		loc, err := board.SgfCoord(u.Coord)
		if err != nil {
			return GameEvent{}, err
		}
		evt.Type = EvtMove
		evt.Location = loc
	case UpdatePass:
		evt.Type = EvtPass
	case UpdateResign:
		evt.Type = EvtResign
	case UpdatePendingMovePlayed:
		loc, err := board.SgfCoord(u.Coord)
		if err != nil {
			return GameEvent{}, err
		}
		evt.Type = EvtPendingMovePlayed
		evt.Location = loc
	default:
		return GameEvent{}, fmt.Errorf("unknown update kind %d", u.Kind)
	}
	return evt, nil
}

func colorCode(c board.Color) string {
	switch c {
	case board.Black:
		return "B"
	case board.White:
		return "W"
	}
	return ""
}

// Display mode kinds. The zero DisplayMode is the default screen, which the
// control token resets to when released.
const (
	ModeDefault     = ""
	ModeCalibration = "calibration"
	ModeTraining    = "training"
	ModeGame        = "game"
)

// DisplayMode selects what the renderer draws on the physical display.
type DisplayMode struct {
	Kind    string `json:"kind"`
	Pattern int64  `json:"pattern,omitempty"` // training pattern seed
}

// MarshalJSON keeps the default mode readable on the wire.
func (m DisplayMode) MarshalJSON() ([]byte, error) {
	type alias DisplayMode
	a := alias(m)
	if a.Kind == ModeDefault {
		a.Kind = "default"
	}
	return json.Marshal(a)
}
