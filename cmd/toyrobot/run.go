package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/toyrobot/internal/cli"
	"github.com/aretw0/toyrobot/internal/presentation/tui"
	"github.com/aretw0/toyrobot/pkg/console"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const defaultHelpWidth = 80

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive a robot from the terminal",
	Long: `Reads commands (PLACE X,Y,F, MOVE, LEFT, RIGHT, REPORT, HELP, QUIT) from the
terminal or from a script file and prints the reports.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		visual, _ := cmd.Flags().GetBool("visual")
		script, _ := cmd.Flags().GetString("file")

		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		var in io.Reader = os.Stdin
		interactive := term.IsTerminal(int(os.Stdin.Fd()))
		if script != "" {
			f, err := os.Open(script)
			if err != nil {
				return fmt.Errorf("failed to open script: %w", err)
			}
			defer f.Close()
			in = f
			interactive = false
		}

		out := cmd.OutOrStdout()
		tty := out == os.Stdout && term.IsTerminal(int(os.Stdout.Fd()))

		opts := []console.Option{console.WithLogger(app.Logger)}
		if !interactive {
			opts = append(opts, console.WithPrompt(""))
		}
		if tty {
			tui.PrintBanner(out)
			width := defaultHelpWidth
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
				width = w
			}
			if render, err := tui.NewRenderer(width); err == nil {
				opts = append(opts, console.WithHelpRenderer(render))
			} else {
				app.Logger.Warn("help renderer unavailable", "err", err)
			}
		}
		if visual {
			profile := termenv.Ascii
			if tty {
				profile = termenv.NewOutput(out).Profile
			}
			opts = append(opts, console.WithDisplay(console.NewGridDisplay(profile)))
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		err = console.New(app.Engine, opts...).Run(sigCtx, in, out)
		if errors.Is(err, context.Canceled) && sigCtx.Signal() != nil {
			app.Logger.Debug("interrupted", "signal", sigCtx.Signal().String())
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("visual", "v", false, "Draw the table after every command")
	runCmd.Flags().StringP("file", "f", "", "Read commands from a script instead of stdin")
}
