package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrUnplaced is returned when serializing a robot that has not been placed.
var ErrUnplaced = errors.New("robot is not placed")

// ErrInvalidDirection is returned for direction names outside NORTH, EAST, SOUTH, WEST.
var ErrInvalidDirection = errors.New("invalid direction")

// ErrOutOfBounds is returned when a serialized pose lies outside the grid.
var ErrOutOfBounds = errors.New("position out of bounds")

// ErrMalformedState is returned when a state payload cannot be decoded.
var ErrMalformedState = errors.New("malformed robot state")

// ErrUnreadableState is returned by stores that hold a session they cannot
// decode, e.g. an envelope sealed with a retired key.
var ErrUnreadableState = errors.New("stored robot state is unreadable")

// ErrInvalidGrid is returned for grids with non-positive dimensions.
var ErrInvalidGrid = errors.New("invalid grid size")
