package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"  _____            ____       _           _   ", "#34d399"},
	{" |_   _|__  _   _ |  _ \\ ___ | |__   ___ | |_ ", "#2dd4bf"},
	{"   | |/ _ \\| | | || |_) / _ \\| '_ \\ / _ \\| __|", "#22d3ee"},
	{"   | | (_) | |_| ||  _ < (_) | |_) | (_) | |_ ", "#38bdf8"},
	{"   |_|\\___/ \\__, ||_| \\_\\___/|_.__/ \\___/ \\__|", "#60a5fa"},
	{"            |___/                             ", "#818cf8"},
}

// PrintBanner writes the ASCII art banner to w, coloured when the terminal allows it.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
