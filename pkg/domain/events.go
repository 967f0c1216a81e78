package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventCommand EventType = "command"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// CommandEvent is emitted after a command has been applied to a robot.
type CommandEvent struct {
	EventBase
	Result
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnCommand func(context.Context, *CommandEvent)
}
