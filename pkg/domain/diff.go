package domain

// StateDiff represents the changes between two robot states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Location  *Position `json:"location,omitempty"`
	Direction *string   `json:"direction,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, the diff carries the entire newState (initial placement).
// It returns nil when nothing changed.
func Diff(sessionID string, oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{SessionID: sessionID}

	if oldState == nil || oldState.Location != newState.Location {
		loc := newState.Location
		diff.Location = &loc
	}
	if oldState == nil || oldState.Direction != newState.Direction {
		dir := newState.Direction
		diff.Direction = &dir
	}

	if diff.Location == nil && diff.Direction == nil {
		return nil
	}
	return diff
}
