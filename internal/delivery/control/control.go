// Package control exposes the display-control websocket. At most one
// controller may be connected at a time; it drives the display mode and the
// digital side of the game through tagged JSON messages.
package control

import (
	"fmt"
	"math/rand"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"goboard/internal/app"
	"goboard/internal/broadcast"
	"goboard/internal/domain/board"
	"goboard/internal/domain/game"
	"goboard/internal/errors"
	"goboard/internal/httpresponse"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type ControlHandler struct {
	log *zap.SugaredLogger
	app *app.App
}

func NewControlHandler(log *zap.SugaredLogger, a *app.App) *ControlHandler {
	return &ControlHandler{log: log, app: a}
}

type reply struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HandleControl upgrades the connection and holds the display-control token
// until the client disconnects. Releasing the token resets the display to
// the default screen, so a crashed controller cannot freeze the board.
func (h *ControlHandler) HandleControl(w http.ResponseWriter, r *http.Request) {
	token, ok := h.app.DisplayControl.TryAcquire()
	if !ok {
		httpresponse.WriteError(w, errors.ErrControlHeld)
		return
	}
	defer token.Release()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	h.log.Infow("display control acquired", "remote", r.RemoteAddr)
	defer h.log.Infow("display control released", "remote", r.RemoteAddr)

	for {
		var msg game.ControlMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		resp := reply{Status: "ok"}
		if err := h.apply(token, msg); err != nil {
			resp = reply{Status: "error", Error: err.Error()}
		}
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
}

func (h *ControlHandler) apply(token *broadcast.OwnedHandle[game.DisplayMode], msg game.ControlMessage) error {
	switch msg.Type {
	case game.CtlReset:
		token.Send(game.DisplayMode{})
		return nil

	case game.CtlNewTrainingPattern:
		token.Send(game.DisplayMode{Kind: game.ModeTraining, Pattern: rand.Int63()})
		return nil

	case game.CtlNewGame:
		color, err := board.ParseColor(msg.UserColor)
		if err != nil {
			return err
		}
		h.app.NewGame(color)
		token.Send(game.DisplayMode{Kind: game.ModeGame})
		return nil

	case game.CtlPlayMove:
		coord, err := board.ParseSgfCoord(msg.Location)
		if err != nil {
			return err
		}
		return h.app.PlayExternalMove(coord)

	case game.CtlPlayPass:
		return h.app.PlayExternalPass()

	case game.CtlEndGame:
		winner, err := board.ParseColor(msg.Winner)
		if err != nil {
			winner = board.Empty
		}
		if err := h.app.EndGame(winner); err != nil {
			return err
		}
		token.Send(game.DisplayMode{})
		return nil
	}
	return fmt.Errorf("unknown control message type %q", msg.Type)
}
