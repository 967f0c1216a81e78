package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/toyrobot/pkg/domain"
	"github.com/muesli/termenv"
)

// clearScreen resets the terminal (RIS).
const clearScreen = "\033c"

// Display decides how the console shows replies and the robot.
type Display interface {
	// Message shows a reply to the last command.
	Message(w io.Writer, msg string) error
	// Frame is called before every prompt.
	Frame(w io.Writer, robot *domain.Robot) error
	// Close is called once when the console stops.
	Close(w io.Writer) error
}

// PlainDisplay prints replies immediately and draws nothing else.
type PlainDisplay struct{}

func (PlainDisplay) Message(w io.Writer, msg string) error {
	_, err := fmt.Fprintln(w, msg)
	return err
}

func (PlainDisplay) Frame(io.Writer, *domain.Robot) error { return nil }

func (PlainDisplay) Close(io.Writer) error { return nil }

// GridDisplay clears the screen and draws the table before every prompt,
// north row first. The latest reply is buffered and shown under the table.
type GridDisplay struct {
	profile termenv.Profile
	buffer  string
}

// NewGridDisplay returns a GridDisplay that colours the robot according to
// profile. Use termenv.Ascii for plain output.
func NewGridDisplay(profile termenv.Profile) *GridDisplay {
	return &GridDisplay{profile: profile}
}

func (d *GridDisplay) Message(_ io.Writer, msg string) error {
	d.buffer = msg
	return nil
}

func (d *GridDisplay) Frame(w io.Writer, robot *domain.Robot) error {
	_, err := io.WriteString(w, d.Render(robot))
	return err
}

func (d *GridDisplay) Close(w io.Writer) error {
	_, err := fmt.Fprintln(w, clearScreen)
	return err
}

// Render builds one frame and consumes the buffered message.
func (d *GridDisplay) Render(robot *domain.Robot) string {
	grid := robot.Grid()
	pose, placed := robot.Report()

	var b strings.Builder
	b.WriteString(clearScreen)
	for y := grid.Height - 1; y >= 0; y-- {
		for x := 0; x < grid.Width; x++ {
			if placed && pose.Position == (domain.Position{X: x, Y: y}) {
				b.WriteString(d.glyph(pose.Facing))
			} else {
				b.WriteString(". ")
			}
		}
		b.WriteString("\n\n")
	}
	if d.buffer != "" {
		b.WriteString(d.buffer)
		d.buffer = ""
	}
	b.WriteString("\n")
	return b.String()
}

func (d *GridDisplay) glyph(dir domain.Direction) string {
	g := Glyph(dir)
	if d.profile == termenv.Ascii {
		return g + " "
	}
	return d.profile.String(g).Foreground(d.profile.Color("#34d399")).Bold().String() + " "
}

// Glyph is the arrow drawn for a robot facing dir.
func Glyph(dir domain.Direction) string {
	switch dir {
	case domain.North:
		return "^"
	case domain.East:
		return ">"
	case domain.South:
		return "v"
	default:
		return "<"
	}
}
