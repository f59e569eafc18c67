package gtp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"goboard/internal/domain/board"
	"goboard/internal/domain/game"
)

// BridgeClient talks to a running bridge over its control socket, event
// stream and REST API.
type BridgeClient struct {
	log     *zap.SugaredLogger
	addr    string
	http    *http.Client
	control *websocket.Conn
	events  *websocket.Conn

	eventCh chan game.GameEvent
	errCh   chan error
}

// Dial connects to the bridge at host:port. Dialing the control socket
// claims the display-control token, so only one GTP adapter can be attached.
func Dial(log *zap.SugaredLogger, addr string) (*BridgeClient, error) {
	control, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/control", nil)
	if err != nil {
		return nil, fmt.Errorf("dial control socket: %w", err)
	}
	events, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/stream/events", nil)
	if err != nil {
		control.Close()
		return nil, fmt.Errorf("dial event stream: %w", err)
	}

	c := &BridgeClient{
		log:     log,
		addr:    addr,
		http:    &http.Client{},
		control: control,
		events:  events,
		eventCh: make(chan game.GameEvent),
		errCh:   make(chan error, 1),
	}
	go c.pumpEvents()
	return c, nil
}

// Close drops both sockets, releasing the display-control token.
func (c *BridgeClient) Close() {
	c.control.Close()
	c.events.Close()
}

func (c *BridgeClient) pumpEvents() {
	for {
		var evt game.GameEvent
		if err := c.events.ReadJSON(&evt); err != nil {
			c.errCh <- fmt.Errorf("event stream: %w", err)
			return
		}
		c.eventCh <- evt
	}
}

func (c *BridgeClient) SetBoardSize(n int) error {
	body, err := json.Marshal(map[string]int{"width": n, "height": n})
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPut, "http://"+c.addr+"/config/board", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("board resize rejected: %s", resp.Status)
	}
	return nil
}

func (c *BridgeClient) NewGame(userColor board.Color) error {
	return c.send(game.ControlMessage{
		Type:      game.CtlNewGame,
		UserColor: string(userColor.Code()),
	})
}

func (c *BridgeClient) PlayMove(coord board.Coord) error {
	loc, err := board.SgfCoord(coord)
	if err != nil {
		return err
	}
	return c.send(game.ControlMessage{Type: game.CtlPlayMove, Location: loc})
}

func (c *BridgeClient) PlayPass() error {
	return c.send(game.ControlMessage{Type: game.CtlPlayPass})
}

func (c *BridgeClient) NextEvent(ctx context.Context) (game.GameEvent, error) {
	select {
	case evt := <-c.eventCh:
		return evt, nil
	case err := <-c.errCh:
		return game.GameEvent{}, err
	case <-ctx.Done():
		return game.GameEvent{}, ctx.Err()
	}
}

type controlReply struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func (c *BridgeClient) send(msg game.ControlMessage) error {
	if err := c.control.WriteJSON(msg); err != nil {
		return fmt.Errorf("control socket: %w", err)
	}
	var resp controlReply
	if err := c.control.ReadJSON(&resp); err != nil {
		return fmt.Errorf("control socket: %w", err)
	}
	if resp.Status != "ok" {
		return fmt.Errorf("bridge rejected %s: %s", msg.Type, resp.Error)
	}
	return nil
}
