package domain

import "fmt"

const (
	// DefaultWidth is the table width used when none is configured.
	DefaultWidth = 5
	// DefaultHeight is the table height used when none is configured.
	DefaultHeight = 5
)

// Position is a cell on the table. The origin (0,0) is the south-west corner.
type Position struct {
	X int `json:"x" mapstructure:"x"`
	Y int `json:"y" mapstructure:"y"`
}

// Add returns p translated by the offset o.
func (p Position) Add(o Position) Position {
	return Position{X: p.X + o.X, Y: p.Y + o.Y}
}

func (p Position) String() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// Grid describes the bounds of the table.
type Grid struct {
	Width  int
	Height int
}

// DefaultGrid returns the standard 5x5 table.
func DefaultGrid() Grid {
	return Grid{Width: DefaultWidth, Height: DefaultHeight}
}

// NewGrid validates and returns a grid of the given size.
func NewGrid(width, height int) (Grid, error) {
	if width <= 0 || height <= 0 {
		return Grid{}, fmt.Errorf("%w: %dx%d", ErrInvalidGrid, width, height)
	}
	return Grid{Width: width, Height: height}, nil
}

// Contains reports whether p lies within [0,Width) x [0,Height).
func (g Grid) Contains(p Position) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

func (g Grid) String() string {
	return fmt.Sprintf("%dx%d", g.Width, g.Height)
}
