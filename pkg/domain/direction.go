package domain

import (
	"fmt"
	"strings"
)

// Direction is one of the four cardinal facings.
// The zero value is North.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// directions holds the clockwise rotation order.
var directions = [...]Direction{North, East, South, West}

var directionNames = [...]string{"NORTH", "EAST", "SOUTH", "WEST"}

// vectors maps a direction to its unit displacement (dx, dy).
var vectors = [...]Position{
	North: {X: 0, Y: 1},
	East:  {X: 1, Y: 0},
	South: {X: 0, Y: -1},
	West:  {X: -1, Y: 0},
}

// Directions returns all directions in clockwise order starting at North.
func Directions() []Direction {
	out := make([]Direction, len(directions))
	copy(out, directions[:])
	return out
}

// IsValid reports whether d is one of the four cardinal directions.
func (d Direction) IsValid() bool {
	return d >= North && d <= West
}

// Vector returns the unit displacement for one step in direction d.
func (d Direction) Vector() Position {
	if !d.IsValid() {
		return Position{}
	}
	return vectors[d]
}

// Right returns the direction 90 degrees clockwise.
func (d Direction) Right() Direction {
	return directions[(int(d)+1)%len(directions)]
}

// Left returns the direction 90 degrees counter-clockwise.
func (d Direction) Left() Direction {
	return directions[(int(d)+len(directions)-1)%len(directions)]
}

// String returns the canonical upper-case name (e.g. "NORTH").
func (d Direction) String() string {
	if !d.IsValid() {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// MarshalText encodes the direction as its canonical name.
func (d Direction) MarshalText() ([]byte, error) {
	if !d.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a direction name, case-insensitively.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDirection resolves a direction name such as "north" or "WEST".
func ParseDirection(name string) (Direction, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range directionNames {
		if n == upper {
			return directions[i], nil
		}
	}
	return North, fmt.Errorf("%w: %q", ErrInvalidDirection, name)
}
