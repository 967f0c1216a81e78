package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/toyrobot"
	"github.com/aretw0/toyrobot/internal/logging"
	"github.com/aretw0/toyrobot/pkg/command"
	"github.com/aretw0/toyrobot/pkg/domain"
)

// DefaultPrompt is written before every read.
const DefaultPrompt = "> "

// PlaceUsage is shown when a PLACE command cannot be parsed.
const PlaceUsage = "Usage: PLACE X,Y,FACING (FACING is NORTH, EAST, SOUTH or WEST)"

// Console is a read-eval loop driving a single robot.
type Console struct {
	engine  *toyrobot.Engine
	robot   *domain.Robot
	display Display
	prompt  string
	help    func(string) (string, error)
	logger  *slog.Logger
}

// Option configures a Console.
type Option func(*Console)

// WithDisplay sets the display strategy (default PlainDisplay).
func WithDisplay(d Display) Option {
	return func(c *Console) {
		c.display = d
	}
}

// WithPrompt overrides the prompt. An empty prompt suits scripted input.
func WithPrompt(prompt string) Option {
	return func(c *Console) {
		c.prompt = prompt
	}
}

// WithHelpRenderer renders command.HelpMarkdown instead of printing command.HelpText.
func WithHelpRenderer(render func(string) (string, error)) Option {
	return func(c *Console) {
		c.help = render
	}
}

// WithLogger sets the logger used for rendering failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Console) {
		c.logger = logger
	}
}

// New creates a console with an unplaced robot on the engine's table.
func New(engine *toyrobot.Engine, opts ...Option) *Console {
	c := &Console{
		engine:  engine,
		robot:   engine.NewRobot(),
		display: PlainDisplay{},
		prompt:  DefaultPrompt,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Robot returns the robot driven by the console.
func (c *Console) Robot() *domain.Robot {
	return c.robot
}

// Run reads commands from in until QUIT, EOF or ctx is done.
// Reaching EOF or QUIT is not an error.
func (c *Console) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		if err := c.display.Frame(out, c.robot); err != nil {
			return err
		}
		if c.prompt != "" {
			if _, err := io.WriteString(out, c.prompt); err != nil {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
				return c.display.Close(out)
			}
			quit, err := c.Eval(ctx, line, out)
			if err != nil {
				return err
			}
			if quit {
				return c.display.Close(out)
			}
		}
	}
}

// Eval executes one input line. It reports whether the line asked to quit.
func (c *Console) Eval(ctx context.Context, input string, out io.Writer) (bool, error) {
	input = strings.TrimSpace(input)

	line, err := command.Parse(input)
	switch {
	case errors.Is(err, command.ErrEmpty):
		return false, nil
	case errors.Is(err, command.ErrMalformed) && isPlace(input):
		return false, c.display.Message(out, PlaceUsage)
	case err != nil:
		return false, c.display.Message(out, command.Unrecognised(input))
	}

	switch line.Kind {
	case command.KindQuit:
		return true, nil
	case command.KindHelp:
		return false, c.display.Message(out, c.helpText())
	}

	res := c.engine.Apply(ctx, "", c.robot, line.Command)
	if res.Command == domain.CommandReport && res.Pose != nil {
		return false, c.display.Message(out, "Output: "+res.Pose.String())
	}
	return false, nil
}

func (c *Console) helpText() string {
	if c.help == nil {
		return command.HelpText
	}
	rendered, err := c.help(command.HelpMarkdown)
	if err != nil {
		c.logger.Warn("failed to render help", "err", err)
		return command.HelpText
	}
	return strings.TrimRight(rendered, "\n")
}

func isPlace(input string) bool {
	return len(input) >= 5 && strings.EqualFold(input[:5], "PLACE")
}
