// Package sgf builds SGF game records. Only the linear main line is
// modeled; the bridge records games, it does not edit variations.
package sgf

import (
	"fmt"
	"strings"
)

// Node is one SGF node, an ordered list of properties such as B[pd] or
// RE[W+Resign]. Property values may repeat.
type Node struct {
	props []property
}

type property struct {
	name   string
	values []string
}

// Add appends a property to the node and returns the node for chaining.
func (n *Node) Add(name string, values ...string) *Node {
	n.props = append(n.props, property{name: name, values: values})
	return n
}

// Record is a single-line SGF game tree: a root node carrying the game
// metadata followed by one node per move.
type Record struct {
	root  Node
	moves []Node
}

// NewRecord creates a record for a game on a width x height board between
// the named players.
func NewRecord(width, height int, blackPlayer, whitePlayer string) *Record {
	size := fmt.Sprintf("%d", width)
	if height != width {
		size = fmt.Sprintf("%d:%d", width, height)
	}
	r := &Record{}
	r.root.Add("FF", "4").Add("GM", "1").Add("SZ", size)
	r.root.Add("PB", blackPlayer).Add("PW", whitePlayer)
	return r
}

// AddMove appends a move node. color is "B" or "W", location the two-letter
// SGF coordinate.
func (r *Record) AddMove(color, location string) {
	var n Node
	n.Add(color, location)
	r.moves = append(r.moves, n)
}

// AddPass appends a pass, encoded as a move with an empty value.
func (r *Record) AddPass(color string) {
	var n Node
	n.Add(color, "")
	r.moves = append(r.moves, n)
}

// SetResult stores the game result on the root node, replacing any earlier
// one.
func (r *Record) SetResult(result string) {
	for i, p := range r.root.props {
		if p.name == "RE" {
			r.root.props[i].values = []string{result}
			return
		}
	}
	r.root.Add("RE", result)
}

// String serializes the record.
func (r *Record) String() string {
	var b strings.Builder
	b.WriteByte('(')
	writeNode(&b, &r.root)
	for i := range r.moves {
		writeNode(&b, &r.moves[i])
	}
	b.WriteByte(')')
	return b.String()
}

func writeNode(b *strings.Builder, n *Node) {
	b.WriteByte(';')
	for _, p := range n.props {
		b.WriteString(p.name)
		for _, v := range p.values {
			b.WriteByte('[')
			b.WriteString(escape(v))
			b.WriteByte(']')
		}
	}
}

// escape protects the two characters with meaning inside a property value.
func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `]`, `\]`)
}
