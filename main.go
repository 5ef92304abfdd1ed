/*
Dolas runs the render engine, windowed or headless, and inspects what a
configuration loads.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spaghettifunk/dolas/engine"
	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/platform"
	"github.com/spaghettifunk/dolas/engine/renderer/headless"
	"github.com/spaghettifunk/dolas/testbed"
)

const usage = `usage: dolas <command> [flags]

commands:
  run       run the engine
  inspect   load the configured views and print what was created
`

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		core.LogWarn("ignoring .env: %s", err)
	}
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = runCommand(os.Args[2:])
	case "inspect":
		err = inspectCommand(os.Args[2:], os.Stdout)
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		core.LogError(err.Error())
		os.Exit(1)
	}
}

// loadConfig reads the config file when given, then applies the
// environment.
func loadConfig(path string) (*engine.EngineConfig, error) {
	cfg := engine.DefaultEngineConfig()
	if path != "" {
		var err error
		if cfg, err = engine.LoadEngineConfig(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func runCommand(args []string) error {
	fls := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fls.String("config", "", "path to engine.toml")
	headlessFlag := fls.Bool("headless", false, "run without a window")
	frames := fls.Uint64("frames", 0, "stop after this many frames (0 runs until quit)")
	if err := fls.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *headlessFlag {
		cfg.Headless = true
	}
	if *frames > 0 {
		cfg.MaxFrames = *frames
	}

	tb := testbed.NewTestGame(sceneNames(cfg)...)
	e, err := engine.New(cfg, headless.New(), tb.Game)
	if err != nil {
		return err
	}

	if !cfg.Headless {
		p, err := platform.New(e.Input(), e.Bus())
		if err != nil {
			return err
		}
		app := cfg.Application
		if err := p.Startup(app.Name, app.StartPosX, app.StartPosY, app.StartWidth, app.StartHeight); err != nil {
			return err
		}
		e.AttachWindow(p)
	}

	if err := e.Initialize(); err != nil {
		_ = e.Shutdown()
		return err
	}

	// signal channel to capture system calls
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	runErr := e.Run(ctx)
	return errors.Join(runErr, e.Shutdown())
}

func sceneNames(cfg *engine.EngineConfig) []string {
	views := cfg.Views
	if len(views) == 0 {
		views = engine.DefaultViews()
	}
	names := make([]string, 0, len(views))
	for _, v := range views {
		names = append(names, v.Scene)
	}
	return names
}
