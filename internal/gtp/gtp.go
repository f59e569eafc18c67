// Package gtp adapts the physical board to the Go Text Protocol, so that
// standard clients can treat the person placing stones as a GTP engine:
// "genmove" blocks until a stone appears on the real board.
package gtp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"goboard/internal/domain/board"
	"goboard/internal/domain/game"
)

// Client is the connection to the bridge used by a Session.
type Client interface {
	SetBoardSize(n int) error
	NewGame(userColor board.Color) error
	PlayMove(c board.Coord) error
	PlayPass() error
	// NextEvent blocks until the bridge reports the next committed game
	// event.
	NextEvent(ctx context.Context) (game.GameEvent, error)
}

// Session runs the GTP command loop over one client connection.
type Session struct {
	log    *zap.SugaredLogger
	client Client

	boardSize int
	inGame    bool
}

// NewSession creates a session with the standard 19x19 board.
func NewSession(log *zap.SugaredLogger, client Client) *Session {
	return &Session{log: log, client: client, boardSize: 19}
}

var commandNames = []string{
	"protocol_version",
	"name",
	"version",
	"known_command",
	"list_commands",
	"quit",
	"boardsize",
	"clear_board",
	"komi",
	"play",
	"genmove",
}

// Run reads GTP commands from r until EOF or "quit", writing responses to w.
func (s *Session) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := stripComment(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		id := ""
		if _, err := strconv.Atoi(fields[0]); err == nil {
			id = fields[0]
			fields = fields[1:]
			if len(fields) == 0 {
				writeError(w, id, "missing command")
				continue
			}
		}

		cmd, args := fields[0], fields[1:]
		s.log.Debugw("gtp command", "command", cmd, "args", args)

		if cmd == "quit" {
			writeSuccess(w, id, "")
			return nil
		}

		result, err := s.dispatch(ctx, cmd, args)
		if err != nil {
			writeError(w, id, err.Error())
			continue
		}
		writeSuccess(w, id, result)
	}
	return scanner.Err()
}

func (s *Session) dispatch(ctx context.Context, cmd string, args []string) (string, error) {
	switch cmd {
	case "protocol_version":
		return "2", nil
	case "name":
		return "goboard", nil
	case "version":
		return "1.0", nil
	case "known_command":
		if len(args) != 1 {
			return "", fmt.Errorf("expected one argument")
		}
		return strconv.FormatBool(isKnown(args[0])), nil
	case "list_commands":
		return strings.Join(commandNames, "\n"), nil
	case "komi":
		// Accepted for compatibility; scoring is out of the bridge's hands.
		return "", nil
	case "boardsize":
		return "", s.cmdBoardsize(args)
	case "clear_board":
		s.inGame = false
		return "", nil
	case "play":
		return "", s.cmdPlay(args)
	case "genmove":
		return s.cmdGenmove(ctx, args)
	}
	return "", fmt.Errorf("unknown command")
}

func (s *Session) cmdBoardsize(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected one argument")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > 25 {
		return fmt.Errorf("unacceptable size")
	}
	if err := s.client.SetBoardSize(n); err != nil {
		return err
	}
	s.boardSize = n
	s.inGame = false
	return nil
}

// cmdPlay forwards an external move to the bridge: the digital game advances
// and the mover's stone becomes pending on the physical board.
func (s *Session) cmdPlay(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("expected color and vertex")
	}
	color, err := board.ParseColor(args[0])
	if err != nil {
		return err
	}
	// The side whose moves arrive over GTP is the external player; the
	// physical board plays the other color.
	if err := s.ensureGame(color.Opponent()); err != nil {
		return err
	}

	if strings.EqualFold(args[1], "pass") {
		return s.client.PlayPass()
	}
	coord, err := ParseVertex(args[1], s.boardSize)
	if err != nil {
		return err
	}
	return s.client.PlayMove(coord)
}

// cmdGenmove waits for the physical player to act.
func (s *Session) cmdGenmove(ctx context.Context, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("expected color")
	}
	color, err := board.ParseColor(args[0])
	if err != nil {
		return "", err
	}
	if err := s.ensureGame(color); err != nil {
		return "", err
	}

	want := string(color.Code())
	for {
		evt, err := s.client.NextEvent(ctx)
		if err != nil {
			return "", err
		}
		if evt.Color != want || evt.Type == game.EvtPendingMovePlayed {
			continue
		}
		switch evt.Type {
		case game.EvtMove:
			coord, err := board.ParseSgfCoord(evt.Location)
			if err != nil {
				return "", err
			}
			return FormatVertex(coord, s.boardSize)
		case game.EvtPass:
			return "pass", nil
		case game.EvtResign:
			return "resign", nil
		}
	}
}

func (s *Session) ensureGame(userColor board.Color) error {
	if s.inGame {
		return nil
	}
	if err := s.client.NewGame(userColor); err != nil {
		return err
	}
	s.inGame = true
	return nil
}

func isKnown(name string) bool {
	i := sort.SearchStrings(sortedCommands, name)
	return i < len(sortedCommands) && sortedCommands[i] == name
}

var sortedCommands = func() []string {
	out := append([]string(nil), commandNames...)
	sort.Strings(out)
	return out
}()

// gtpColumns skips "I", per the protocol.
const gtpColumns = "ABCDEFGHJKLMNOPQRSTUVWXYZ"

// FormatVertex renders a coordinate as a GTP vertex, rows counted from the
// bottom.
func FormatVertex(c board.Coord, size int) (string, error) {
	if c.X < 0 || c.X >= len(gtpColumns) || c.Y < 0 || c.Y >= size {
		return "", fmt.Errorf("coordinate (%d,%d) out of range", c.X, c.Y)
	}
	return fmt.Sprintf("%c%d", gtpColumns[c.X], size-c.Y), nil
}

// ParseVertex parses a GTP vertex like "D4".
func ParseVertex(s string, size int) (board.Coord, error) {
	if len(s) < 2 {
		return board.Coord{}, fmt.Errorf("invalid vertex %q", s)
	}
	col := strings.IndexByte(gtpColumns, byte(strings.ToUpper(s[:1])[0]))
	if col < 0 {
		return board.Coord{}, fmt.Errorf("invalid vertex %q", s)
	}
	row, err := strconv.Atoi(s[1:])
	if err != nil || row < 1 || row > size {
		return board.Coord{}, fmt.Errorf("invalid vertex %q", s)
	}
	return board.Coord{X: col, Y: size - row}, nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

func writeSuccess(w io.Writer, id, result string) {
	if result == "" {
		fmt.Fprintf(w, "=%s\n\n", id)
		return
	}
	fmt.Fprintf(w, "=%s %s\n\n", id, result)
}

func writeError(w io.Writer, id, message string) {
	fmt.Fprintf(w, "?%s %s\n\n", id, message)
}
