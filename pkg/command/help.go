package command

// HelpText is printed by the HELP command.
const HelpText = `PLACE X,Y,FACING     Will put the toy robot on the table in position X,Y and facing NORTH, SOUTH, EAST or WEST.
                     The origin (0,0) can be considered to be the SOUTH WEST most corner.
                     The first valid command to the robot is a PLACE command, after that, any sequence of
                     commands may be issued, in any order, including another PLACE command.
MOVE                 Will move the toy robot one unit forward in the direction it is currently facing.
LEFT                 Will rotate the robot 90 degrees counter-clockwise without changing the position of the robot.
RIGHT                Will rotate the robot 90 degrees clockwise without changing the position of the robot.
REPORT               Will announce the X,Y and F of the robot. This can be in any form, but standard output is sufficient.`

// HelpMarkdown is the same reference formatted for a markdown renderer.
const HelpMarkdown = "# Commands\n\n" +
	"| Command | Effect |\n" +
	"|---|---|\n" +
	"| `PLACE X,Y,FACING` | Put the robot at X,Y facing NORTH, SOUTH, EAST or WEST. (0,0) is the SOUTH WEST corner. Must come first; may be repeated. |\n" +
	"| `MOVE` | Move one unit forward in the direction the robot is facing. |\n" +
	"| `LEFT` | Rotate 90 degrees counter-clockwise in place. |\n" +
	"| `RIGHT` | Rotate 90 degrees clockwise in place. |\n" +
	"| `REPORT` | Announce X,Y and F of the robot. |\n" +
	"| `HELP` | Show this reference. |\n" +
	"| `QUIT` | Leave the console. |\n\n" +
	"Commands that would make the robot fall off the table are ignored.\n"

// Unrecognised formats the reply for input that is not a command.
func Unrecognised(input string) string {
	return "'" + input + "' is not recognised. Type 'help' for help."
}
