package gtp

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"goboard/internal/domain/board"
	"goboard/internal/domain/game"
)

// fakeClient records calls and serves queued events.
type fakeClient struct {
	boardSize int
	userColor board.Color
	games     int
	moves     []board.Coord
	passes    int
	events    []game.GameEvent
}

func (f *fakeClient) SetBoardSize(n int) error { f.boardSize = n; return nil }
func (f *fakeClient) NewGame(c board.Color) error {
	f.games++
	f.userColor = c
	return nil
}
func (f *fakeClient) PlayMove(c board.Coord) error { f.moves = append(f.moves, c); return nil }
func (f *fakeClient) PlayPass() error              { f.passes++; return nil }
func (f *fakeClient) NextEvent(ctx context.Context) (game.GameEvent, error) {
	if len(f.events) == 0 {
		return game.GameEvent{}, ctx.Err()
	}
	evt := f.events[0]
	f.events = f.events[1:]
	return evt, nil
}

func runSession(t *testing.T, client Client, input string) []string {
	t.Helper()
	s := NewSession(zap.NewNop().Sugar(), client)
	var out strings.Builder
	if err := s.Run(context.Background(), strings.NewReader(input), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	var responses []string
	for _, chunk := range strings.Split(out.String(), "\n\n") {
		if chunk != "" {
			responses = append(responses, chunk)
		}
	}
	return responses
}

func TestProtocolBasics(t *testing.T) {
	resp := runSession(t, &fakeClient{}, "protocol_version\nname\n1 version\nquit\n")
	want := []string{"= 2", "= goboard", "=1 1.0", "="}
	if len(resp) != len(want) {
		t.Fatalf("got %d responses %v, want %d", len(resp), resp, len(want))
	}
	for i := range want {
		if resp[i] != want[i] {
			t.Errorf("response %d = %q, want %q", i, resp[i], want[i])
		}
	}
}

func TestKnownCommand(t *testing.T) {
	resp := runSession(t, &fakeClient{}, "known_command genmove\nknown_command explode\n")
	if resp[0] != "= true" || resp[1] != "= false" {
		t.Fatalf("got %v", resp)
	}
}

func TestListCommandsCoversTable(t *testing.T) {
	resp := runSession(t, &fakeClient{}, "list_commands\n")
	for _, name := range commandNames {
		if !strings.Contains(resp[0], name) {
			t.Errorf("list_commands missing %q", name)
		}
	}
}

func TestBoardsize(t *testing.T) {
	client := &fakeClient{}
	resp := runSession(t, client, "boardsize 13\nboardsize 99\n")
	if resp[0] != "= " && resp[0] != "=" {
		t.Fatalf("boardsize 13: %q", resp[0])
	}
	if client.boardSize != 13 {
		t.Fatalf("client board size = %d", client.boardSize)
	}
	if !strings.HasPrefix(resp[1], "?") {
		t.Fatalf("boardsize 99 accepted: %q", resp[1])
	}
}

func TestPlayStartsGameForOpponent(t *testing.T) {
	client := &fakeClient{}
	runSession(t, client, "play B D4\nplay W pass\n")

	// The GTP side plays Black, so the physical board holds White.
	if client.games != 1 {
		t.Fatalf("games started = %d, want 1", client.games)
	}
	if client.userColor != board.White {
		t.Fatalf("user color = %v, want White", client.userColor)
	}
	if len(client.moves) != 1 || client.moves[0] != (board.Coord{X: 3, Y: 15}) {
		t.Fatalf("moves = %v", client.moves)
	}
	if client.passes != 1 {
		t.Fatalf("passes = %d, want 1", client.passes)
	}
}

func TestGenmoveWaitsForMatchingEvent(t *testing.T) {
	client := &fakeClient{
		events: []game.GameEvent{
			{Type: game.EvtPendingMovePlayed, Location: "dd", Color: "W"},
			{Type: game.EvtMove, Location: "pd", Color: "B"},
		},
	}
	resp := runSession(t, client, "genmove B\n")
	if resp[0] != "= Q16" {
		t.Fatalf("genmove = %q, want %q", resp[0], "= Q16")
	}
	if client.userColor != board.Black {
		t.Fatalf("user color = %v, want Black", client.userColor)
	}
}

func TestGenmovePassAndResign(t *testing.T) {
	client := &fakeClient{
		events: []game.GameEvent{
			{Type: game.EvtPass, Color: "W"},
			{Type: game.EvtResign, Color: "W"},
		},
	}
	resp := runSession(t, client, "genmove W\ngenmove W\n")
	if resp[0] != "= pass" || resp[1] != "= resign" {
		t.Fatalf("got %v", resp)
	}
}

func TestVertexRoundTrip(t *testing.T) {
	cases := []struct {
		vertex string
		coord  board.Coord
	}{
		{"A1", board.Coord{X: 0, Y: 18}},
		{"T19", board.Coord{X: 18, Y: 0}},
		{"J10", board.Coord{X: 8, Y: 9}},
		{"D4", board.Coord{X: 3, Y: 15}},
	}
	for _, tc := range cases {
		got, err := ParseVertex(tc.vertex, 19)
		if err != nil {
			t.Fatalf("ParseVertex(%q): %v", tc.vertex, err)
		}
		if got != tc.coord {
			t.Errorf("ParseVertex(%q) = %v, want %v", tc.vertex, got, tc.coord)
		}
		back, err := FormatVertex(tc.coord, 19)
		if err != nil {
			t.Fatalf("FormatVertex(%v): %v", tc.coord, err)
		}
		if back != tc.vertex {
			t.Errorf("FormatVertex(%v) = %q, want %q", tc.coord, back, tc.vertex)
		}
	}

	// "I" is not a GTP column.
	if _, err := ParseVertex("I5", 19); err == nil {
		t.Error("ParseVertex accepted I5")
	}
}

func TestUnknownCommand(t *testing.T) {
	resp := runSession(t, &fakeClient{}, "7 explode\n")
	if resp[0] != "?7 unknown command" {
		t.Fatalf("got %q", resp[0])
	}
}
