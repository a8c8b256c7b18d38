package board

import (
	"reflect"
	"testing"
)

func fill(b *Board, owners ...string) {
	// owners are laid out row by row, top to bottom
	for i, o := range owners {
		b.Set(i%b.Width(), i/b.Width(), o)
	}
}

func TestEvaluateHorizontal(t *testing.T) {
	b := New(7, 6)
	for c := 1; c <= 4; c++ {
		b.Set(c, 5, "p1")
	}
	b.Set(0, 5, "p2")

	got := Evaluate(b)
	if got.Winner != "p1" || got.Type != Horizontal {
		t.Fatalf("expected p1 horizontal, got %+v", got)
	}
	want := []Position{{1, 5}, {2, 5}, {3, 5}, {4, 5}}
	if !reflect.DeepEqual(got.Positions, want) {
		t.Fatalf("positions = %v, want %v", got.Positions, want)
	}
}

func TestEvaluateHorizontalBeforeVertical(t *testing.T) {
	b := New(7, 6)
	for r := 2; r < 6; r++ {
		b.Set(0, r, "v")
	}
	for c := 3; c < 7; c++ {
		b.Set(c, 5, "h")
	}
	if got := Evaluate(b); got.Winner != "h" || got.Type != Horizontal {
		t.Fatalf("expected horizontal line to win the scan, got %+v", got)
	}
}

func TestEvaluateVertical(t *testing.T) {
	b := New(7, 6)
	for r := 1; r <= 4; r++ {
		b.Set(6, r, "p2")
	}
	got := Evaluate(b)
	if got.Winner != "p2" || got.Type != Vertical {
		t.Fatalf("expected p2 vertical, got %+v", got)
	}
	if got.Positions[0] != (Position{6, 1}) || got.Positions[3] != (Position{6, 4}) {
		t.Fatalf("unexpected positions %v", got.Positions)
	}
}

func TestEvaluateDiagonals(t *testing.T) {
	tests := []struct {
		name  string
		cells []Position
		want  WinType
		first Position
	}{
		{
			name:  "rising from the bottom row",
			cells: []Position{{0, 5}, {1, 4}, {2, 3}, {3, 2}},
			want:  DiagonalRising,
			first: Position{0, 5},
		},
		{
			name:  "rising ending at the top row",
			cells: []Position{{3, 3}, {4, 2}, {5, 1}, {6, 0}},
			want:  DiagonalRising,
			first: Position{3, 3},
		},
		{
			name:  "falling",
			cells: []Position{{2, 1}, {3, 2}, {4, 3}, {5, 4}},
			want:  DiagonalFalling,
			first: Position{2, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(7, 6)
			for _, p := range tt.cells {
				b.Set(p.Column, p.Row, "d")
			}
			got := Evaluate(b)
			if got.Winner != "d" || got.Type != tt.want {
				t.Fatalf("expected d %s, got %+v", tt.want, got)
			}
			if got.Positions[0] != tt.first {
				t.Fatalf("expected line to start at %v, got %v", tt.first, got.Positions)
			}
		})
	}
}

func TestEvaluateDraw(t *testing.T) {
	b := New(7, 6)
	// owners alternate by column and flip every two rows
	for c := 0; c < 7; c++ {
		for r := 0; r < 6; r++ {
			if (c+r/2)%2 == 0 {
				b.Set(c, r, "a")
			} else {
				b.Set(c, r, "b")
			}
		}
	}
	got := Evaluate(b)
	if !got.IsDraw() || got.Winner != DrawWinner {
		t.Fatalf("expected a draw, got %+v", got)
	}
}

func TestEvaluateNoWinnerYet(t *testing.T) {
	b := New(7, 6)
	fill(b, "a", "b", "a")
	if got := Evaluate(b); got.Over() {
		t.Fatalf("expected no result, got %+v", got)
	}
}

func TestEvaluateGenericDimensions(t *testing.T) {
	b := New(4, 4)
	for i := 0; i < 4; i++ {
		b.Set(i, 3-i, "x")
	}
	if got := Evaluate(b); got.Type != DiagonalRising {
		t.Fatalf("expected rising diagonal on a 4x4 board, got %+v", got)
	}
}
