// Package stream exposes the live feeds of the bridge over websockets: the
// raw and dewarped camera frames, the classifier output, the resolved board,
// the rendered display frame and the game events.
package stream

import (
	"context"
	"encoding/binary"
	"image"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"goboard/internal/app"
	"goboard/internal/broadcast"
	"goboard/internal/domain/board"
	"goboard/internal/domain/game"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamHandler serves the broadcast endpoints.
type StreamHandler struct {
	log *zap.SugaredLogger
	app *app.App
}

func NewStreamHandler(log *zap.SugaredLogger, a *app.App) *StreamHandler {
	return &StreamHandler{log: log, app: a}
}

// HandleRawFrames streams the camera frames as binary messages.
func (h *StreamHandler) HandleRawFrames(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.app.RawFrames, true, writeFrame)
}

// HandleBoardFrames streams the dewarped, normalized board images.
func (h *StreamHandler) HandleBoardFrames(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.app.BoardFrames, true, writeFrame)
}

// HandleDisplayFrames streams the rendered display output.
func (h *StreamHandler) HandleDisplayFrames(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.app.DisplayFrames, false, writeFrame)
}

// HandleProbabilities streams the per-intersection classifier output as JSON.
func (h *StreamHandler) HandleProbabilities(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.app.Probabilities, true, func(conn *websocket.Conn, g board.ProbabilityGrid) error {
		if g.Width == 0 {
			return nil
		}
		return conn.WriteJSON(g.Nested())
	})
}

// HandleResolvedBoards streams each successfully resolved board as text, one
// row per line.
func (h *StreamHandler) HandleResolvedBoards(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.app.ResolvedBoards, true, func(conn *websocket.Conn, b board.ResolvedBoard) error {
		if b.Width == 0 {
			return nil
		}
		return conn.WriteMessage(websocket.TextMessage, []byte(strings.Join(b.Rows(), "\n")))
	})
}

// HandleEvents streams committed game events as JSON.
func (h *StreamHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.app.Events, false, func(conn *websocket.Conn, evt game.GameEvent) error {
		return conn.WriteJSON(evt)
	})
}

// serve pumps a broadcast source into one websocket connection. Camera-fed
// endpoints hold a stream claim for the lifetime of the connection, which
// blocks board-geometry mutations; see App.SetBoardConfig.
func serve[T any](h *StreamHandler, w http.ResponseWriter, r *http.Request, src *broadcast.Source[T], claim bool, write func(*websocket.Conn, T) error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorw("websocket upgrade failed", "path", r.URL.Path, "error", err)
		return
	}
	defer conn.Close()

	if claim {
		release, err := h.app.AcquireStream()
		if err != nil {
			h.log.Infow("stream rejected", "path", r.URL.Path, "error", err)
			return
		}
		defer release()
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Drain the connection so client closes cancel the write loop.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	rcv := src.Subscribe()
	defer rcv.Close()

	h.log.Infow("stream attached", "path", r.URL.Path)
	defer h.log.Infow("stream detached", "path", r.URL.Path)

	for {
		v, err := rcv.Next(ctx)
		if err != nil {
			return
		}
		if err := write(conn, v); err != nil {
			return
		}
	}
}

// writeFrame sends an RGBA image as one binary message: big-endian uint32
// width and height followed by tightly packed RGBA rows.
func writeFrame(conn *websocket.Conn, img *image.RGBA) error {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	buf := make([]byte, 8+w*h*4)
	binary.BigEndian.PutUint32(buf[0:4], uint32(w))
	binary.BigEndian.PutUint32(buf[4:8], uint32(h))
	rowLen := w * 4
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+rowLen]
		copy(buf[8+y*rowLen:], src)
	}
	return conn.WriteMessage(websocket.BinaryMessage, buf)
}
