package ports

import (
	"context"

	"github.com/aretw0/toyrobot/pkg/domain"
)

// StateStore keeps the pose of each session's robot between commands.
//
// Only placed robots are stored: a session with no entry is a robot that has
// not been placed yet, and the grid is never part of the record. Session IDs
// are opaque to the store but must never collide with its own bookkeeping.
type StateStore interface {
	// Save records the robot's pose under sessionID, replacing any earlier one.
	Save(ctx context.Context, sessionID string, state *domain.State) error

	// Load returns the last pose saved for sessionID.
	// A session that was never saved (or has expired) yields domain.ErrSessionNotFound;
	// a record that exists but cannot be decoded yields domain.ErrUnreadableState.
	Load(ctx context.Context, sessionID string) (*domain.State, error)

	// Delete forgets the robot. Forgetting an unknown session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the sessions that currently have a placed robot.
	List(ctx context.Context) ([]string, error)
}
