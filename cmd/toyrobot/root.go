package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/toyrobot/internal/cli"
	"github.com/aretw0/toyrobot/internal/config"
	"github.com/aretw0/toyrobot/pkg/domain"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "toyrobot",
	Short: "ToyRobot simulates a robot on a square table",
	Long: `ToyRobot places a robot on a table, moves and turns it, and reports where it is.
Drive it from the terminal (run), over HTTP (serve) or as an MCP server for agents (mcp).`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to the configuration file (default toyrobot.yaml)")
	pf.Int("width", domain.DefaultWidth, "Table width")
	pf.Int("height", domain.DefaultHeight, "Table height")
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	pf.String("store", "", "Session store: memory, file or redis")
}

// loadConfig merges the config file, the environment and the flags, in that order.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(afero.NewOsFs(), path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Grid.Width, _ = flags.GetInt("width")
	}
	if flags.Changed("height") {
		cfg.Grid.Height, _ = flags.GetInt("height")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("store") {
		cfg.Store.Driver, _ = flags.GetString("store")
	}
	return cfg, nil
}

// newApp builds the application for cmd. Callers must Close it.
func newApp(cmd *cobra.Command) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := cli.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return nil, err
	}
	return cli.Build(cfg, logger)
}
