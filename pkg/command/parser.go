package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/aretw0/toyrobot/pkg/domain"
)

var (
	// ErrEmpty is returned for blank lines.
	ErrEmpty = errors.New("empty command")
	// ErrUnknownCommand is returned when the first word is not a known verb.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrMalformed is returned when a known verb has bad arguments.
	ErrMalformed = errors.New("malformed command")
)

// Kind tells robot commands apart from console directives.
type Kind int

const (
	KindRobot Kind = iota
	KindHelp
	KindQuit
)

// Line is one parsed input line.
type Line struct {
	Kind    Kind
	Command domain.Command // set when Kind is KindRobot
}

var verbs = map[string]Kind{
	"PLACE":  KindRobot,
	"MOVE":   KindRobot,
	"LEFT":   KindRobot,
	"RIGHT":  KindRobot,
	"REPORT": KindRobot,
	"HELP":   KindHelp,
	"QUIT":   KindQuit,
	"EXIT":   KindQuit,
}

type grammar struct {
	Place *placeArgs `parser:"  'PLACE' @@"`
	Verb  string     `parser:"| @('MOVE' | 'LEFT' | 'RIGHT' | 'REPORT' | 'HELP' | 'QUIT' | 'EXIT')"`
}

// placeArgs accepts both "X,Y,F" and "X Y F".
type placeArgs struct {
	X      int    `parser:"@Int ','?"`
	Y      int    `parser:"@Int ','?"`
	Facing string `parser:"@Ident"`
}

var commandLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[-+]?\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_]+`},
	{Name: "Punct", Pattern: `,`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var parser = participle.MustBuild[grammar](
	participle.Lexer(commandLexer),
	participle.Elide("Whitespace"),
	participle.CaseInsensitive("Ident"),
)

// Parse reads a single command line. Verbs and directions are case-insensitive.
func Parse(input string) (Line, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Line{}, ErrEmpty
	}

	words := strings.FieldsFunc(input, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
	if len(words) == 0 {
		return Line{}, fmt.Errorf("%w: %q", ErrUnknownCommand, input)
	}
	verb := strings.ToUpper(words[0])
	if _, ok := verbs[verb]; !ok {
		return Line{}, fmt.Errorf("%w: %q", ErrUnknownCommand, verb)
	}

	g, err := parser.ParseString("", input)
	if err != nil {
		return Line{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if g.Place != nil {
		facing, err := domain.ParseDirection(g.Place.Facing)
		if err != nil {
			return Line{}, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		return Line{Kind: KindRobot, Command: domain.PlaceCommand(g.Place.X, g.Place.Y, facing)}, nil
	}

	verb = strings.ToUpper(g.Verb)
	kind := verbs[verb]
	if kind != KindRobot {
		return Line{Kind: kind}, nil
	}
	return Line{Kind: KindRobot, Command: domain.Command{Type: domain.CommandType(verb)}}, nil
}
