package domain

// CommandType names an operation on the robot.
type CommandType string

const (
	CommandPlace  CommandType = "PLACE"
	CommandMove   CommandType = "MOVE"
	CommandLeft   CommandType = "LEFT"
	CommandRight  CommandType = "RIGHT"
	CommandReport CommandType = "REPORT"
)

// Command is a single instruction for the robot. Position and Facing are
// only meaningful for CommandPlace.
type Command struct {
	Type     CommandType
	Position Position
	Facing   Direction
}

// PlaceCommand builds a PLACE command.
func PlaceCommand(x, y int, facing Direction) Command {
	return Command{Type: CommandPlace, Position: Position{X: x, Y: y}, Facing: facing}
}

// Outcome classifies what a command did. None of these are errors.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"  // state changed (place, rotate) or pose reported
	OutcomeMoved    Outcome = "moved"    // move committed
	OutcomeIgnored  Outcome = "ignored"  // move would leave the table
	OutcomeRejected Outcome = "rejected" // place outside the table
	OutcomeUnplaced Outcome = "unplaced" // robot has no pose yet
	OutcomeUnknown  Outcome = "unknown"  // command type not recognised
)

// Result is the outcome of applying a Command.
type Result struct {
	Command CommandType `json:"command"`
	Outcome Outcome     `json:"outcome"`
	// Pose is the pose after the command, nil while unplaced.
	Pose *Pose `json:"pose,omitempty"`
}

// Changed reports whether the command altered the robot's pose.
func (r Result) Changed() bool {
	switch r.Outcome {
	case OutcomeMoved:
		return true
	case OutcomeSuccess:
		return r.Command != CommandReport
	}
	return false
}

// Apply dispatches cmd to the matching robot operation.
func (r *Robot) Apply(cmd Command) Result {
	res := Result{Command: cmd.Type}

	switch cmd.Type {
	case CommandPlace:
		res.Outcome = OutcomeRejected
		if r.Place(cmd.Position, cmd.Facing) {
			res.Outcome = OutcomeSuccess
		}
	case CommandMove:
		switch {
		case !r.Placed():
			res.Outcome = OutcomeUnplaced
		case r.Move():
			res.Outcome = OutcomeMoved
		default:
			res.Outcome = OutcomeIgnored
		}
	case CommandLeft, CommandRight:
		if !r.Placed() {
			res.Outcome = OutcomeUnplaced
			break
		}
		if cmd.Type == CommandLeft {
			r.Left()
		} else {
			r.Right()
		}
		res.Outcome = OutcomeSuccess
	case CommandReport:
		res.Outcome = OutcomeUnplaced
		if r.Placed() {
			res.Outcome = OutcomeSuccess
		}
	default:
		res.Outcome = OutcomeUnknown
	}

	if pose, ok := r.Report(); ok {
		res.Pose = &pose
	}
	return res
}
