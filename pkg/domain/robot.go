package domain

import "fmt"

// Pose is the full placement of the robot: where it stands and where it faces.
type Pose struct {
	Position Position  `json:"position"`
	Facing   Direction `json:"facing"`
}

func (p Pose) String() string {
	return fmt.Sprintf("%d,%d,%s", p.Position.X, p.Position.Y, p.Facing)
}

// Robot is the simulator state machine.
//
// A Robot is either unplaced (pose == nil) or placed on its grid. Every
// operation either produces a new in-bounds pose or leaves the robot untouched;
// expected outcomes such as boundary rejection are reported through return
// values. A Robot is not safe for concurrent use.
type Robot struct {
	grid Grid
	pose *Pose
}

// NewRobot returns an unplaced robot on the given grid.
func NewRobot(grid Grid) *Robot {
	return &Robot{grid: grid}
}

// Grid returns the bounds the robot was created with.
func (r *Robot) Grid() Grid {
	return r.grid
}

// Placed reports whether the robot currently has a pose.
func (r *Robot) Placed() bool {
	return r.pose != nil
}

// Place puts the robot at pos facing dir, replacing any previous pose.
// It returns false and leaves the robot unchanged if pos is off the table
// or dir is not a cardinal direction.
func (r *Robot) Place(pos Position, dir Direction) bool {
	if !r.grid.Contains(pos) || !dir.IsValid() {
		return false
	}
	r.pose = &Pose{Position: pos, Facing: dir}
	return true
}

// Move advances the robot one cell in the direction it faces.
// It returns false if the robot is unplaced or the step would leave the table.
func (r *Robot) Move() bool {
	if r.pose == nil {
		return false
	}
	next := r.pose.Position.Add(r.pose.Facing.Vector())
	if !r.grid.Contains(next) {
		return false
	}
	r.pose.Position = next
	return true
}

// Left rotates the robot 90 degrees counter-clockwise. No-op when unplaced.
func (r *Robot) Left() {
	if r.pose == nil {
		return
	}
	r.pose.Facing = r.pose.Facing.Left()
}

// Right rotates the robot 90 degrees clockwise. No-op when unplaced.
func (r *Robot) Right() {
	if r.pose == nil {
		return
	}
	r.pose.Facing = r.pose.Facing.Right()
}

// Report returns the current pose. The boolean is false when unplaced.
func (r *Robot) Report() (Pose, bool) {
	if r.pose == nil {
		return Pose{}, false
	}
	return *r.pose, true
}
