package sgf

import (
	"strings"
	"testing"
)

func TestRecordHeader(t *testing.T) {
	r := NewRecord(19, 19, "human", "external")
	got := r.String()
	want := "(;FF[4]GM[1]SZ[19]PB[human]PW[external])"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRectangularBoardSize(t *testing.T) {
	r := NewRecord(19, 13, "a", "b")
	got := r.String()
	if want := "SZ[19:13]"; !strings.Contains(got, want) {
		t.Fatalf("%q does not contain %q", got, want)
	}
}

func TestMovesAndResult(t *testing.T) {
	r := NewRecord(9, 9, "human", "external")
	r.AddMove("B", "dd")
	r.AddMove("W", "pd")
	r.AddPass("B")
	r.SetResult("W+Resign")

	got := r.String()
	want := "(;FF[4]GM[1]SZ[9]PB[human]PW[external]RE[W+Resign];B[dd];W[pd];B[])"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSetResultReplaces(t *testing.T) {
	r := NewRecord(9, 9, "a", "b")
	r.SetResult("B+")
	r.SetResult("W+Resign")
	got := r.String()
	if strings.Contains(got, "B+") {
		t.Fatalf("stale result survived: %q", got)
	}
	if !strings.Contains(got, "RE[W+Resign]") {
		t.Fatalf("result missing: %q", got)
	}
}

func TestEscaping(t *testing.T) {
	r := NewRecord(9, 9, `back\slash`, "brack]et")
	got := r.String()
	if !strings.Contains(got, `PB[back\\slash]`) || !strings.Contains(got, `PW[brack\]et]`) {
		t.Fatalf("escaping broken: %q", got)
	}
}
