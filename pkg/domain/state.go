package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// State is the serialized form of a placed robot, handed to adapters for
// storage between interactions. The grid is not part of the payload: it is
// configuration supplied again when the robot is restored.
//
//	{"location": {"x": 1, "y": 2}, "direction": "NORTH"}
//
// Sealed is only set by storage middleware that replaces the pose with an
// opaque ciphertext; such a state cannot be restored until it is unsealed.
type State struct {
	Location  Position `json:"location" mapstructure:"location"`
	Direction string   `json:"direction" mapstructure:"direction"`
	Sealed    string   `json:"sealed,omitempty" mapstructure:"sealed"`
}

// Dump serializes the robot pose. Unplaced robots have no state and yield ErrUnplaced.
func (r *Robot) Dump() (State, error) {
	pose, ok := r.Report()
	if !ok {
		return State{}, ErrUnplaced
	}
	return StateOf(pose), nil
}

// StateOf returns the serialized form of a pose.
func StateOf(p Pose) State {
	return State{Location: p.Position, Direction: p.Facing.String()}
}

// Pose decodes the direction name and returns the encoded pose.
// It does not check bounds; use Restore for that.
func (s State) Pose() (Pose, error) {
	dir, err := ParseDirection(s.Direction)
	if err != nil {
		return Pose{}, err
	}
	return Pose{Position: s.Location, Facing: dir}, nil
}

// Restore rebuilds a robot on grid from a serialized state. The pose goes
// through Place, so a payload outside the grid is rejected with ErrOutOfBounds
// instead of producing a robot that violates its bounds.
func Restore(grid Grid, s State) (*Robot, error) {
	pose, err := s.Pose()
	if err != nil {
		return nil, err
	}
	r := NewRobot(grid)
	if !r.Place(pose.Position, pose.Facing) {
		return nil, fmt.Errorf("%w: %s on %s grid", ErrOutOfBounds, pose.Position, grid)
	}
	return r, nil
}

// Map returns the state as a generic map, matching its JSON shape.
func (s State) Map() map[string]any {
	return map[string]any{
		"location": map[string]any{
			"x": s.Location.X,
			"y": s.Location.Y,
		},
		"direction": s.Direction,
	}
}

// StateFromMap decodes an untyped payload (e.g. decoded JSON or tool arguments).
// Numeric strings are accepted for coordinates.
func StateFromMap(m map[string]any) (State, error) {
	var s State
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &s,
	})
	if err != nil {
		return State{}, err
	}
	if err := decoder.Decode(m); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	if s.Direction == "" {
		return State{}, fmt.Errorf("%w: missing direction", ErrMalformedState)
	}
	return s, nil
}

// ParseState parses the compact text form "X,Y,F" (e.g. "1,2,NORTH").
// The legacy form without separators ("12NORTH") is accepted for single-digit
// coordinates.
func ParseState(text string) (State, error) {
	text = strings.TrimSpace(text)
	parts := strings.Split(text, ",")
	if len(parts) != 3 {
		if len(text) < 3 {
			return State{}, fmt.Errorf("%w: %q", ErrMalformedState, text)
		}
		parts = []string{text[:1], text[1:2], text[2:]}
	}

	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return State{}, fmt.Errorf("%w: bad x in %q", ErrMalformedState, text)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return State{}, fmt.Errorf("%w: bad y in %q", ErrMalformedState, text)
	}
	dir, err := ParseDirection(parts[2])
	if err != nil {
		return State{}, err
	}
	return State{Location: Position{X: x, Y: y}, Direction: dir.String()}, nil
}
