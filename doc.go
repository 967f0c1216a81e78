/*
Package toyrobot simulates a robot moving on a square table.

The robot can be placed, moved one cell forward, rotated left or right, and
asked to report its pose. It never leaves the table: commands that would push it
off are ignored, and a robot that has not been placed ignores everything except
PLACE.

# Concept

The simulator itself (package domain) is a pure state machine. It holds no
state between interactions: adapters such as the interactive console, the HTTP
server or the MCP server load a serialized State, restore a Robot, apply one
command and store the State again. This Hexagonal Architecture lets the same
core sit behind any interface.

# Usage

	eng, err := toyrobot.New()
	if err != nil {
		log.Fatal(err)
	}

	robot := eng.NewRobot()
	ctx := context.Background()
	eng.Apply(ctx, "", robot, domain.PlaceCommand(0, 0, domain.North))
	eng.Apply(ctx, "", robot, domain.Command{Type: domain.CommandMove})

	if pose, ok := robot.Report(); ok {
		fmt.Println("Output:", pose) // Output: 0,1,NORTH
	}

	// Persist between requests
	state, _ := robot.Dump()
	restored, _ := eng.Restore(&state)
*/
package toyrobot
