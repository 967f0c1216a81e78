/*
Package domain contains the core model of the toy robot simulator.

It defines the robot state machine and its value types. This package is kept
pure and free of external dependencies like I/O or persistence, following
Hexagonal Architecture principles: adapters load a State, restore a Robot,
apply one command and dump the State back.

# Key Entities

  - Direction: one of NORTH, EAST, SOUTH, WEST with a unit vector and rotation.
  - Grid: the table bounds (5x5 by default).
  - Robot: the simulator. Unplaced until a valid Place; never leaves the grid.
  - State: the serialized pose stored by adapters between interactions.
  - Command / Result: a uniform way for adapters to drive the robot.
*/
package domain
