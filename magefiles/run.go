//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the engine without a window for a fixed number of frames.
func (Run) Headless() error {
	fmt.Println("Run engine headless...")
	_, err := executeCmd("go", withArgs(runArgs("--headless", "--frames", "600")...), withStream())
	return err
}

// Runs the engine in a window until it is closed.
func (Run) Window() error {
	fmt.Println("Run engine...")
	_, err := executeCmd("go", withArgs(runArgs()...), withStream())
	return err
}

// Prints what the configuration loads.
func (Run) Inspect() error {
	args := []string{"run", ".", "inspect"}
	if _, err := os.Stat("engine.toml"); err == nil {
		args = append(args, "--config", "engine.toml")
	}
	_, err := executeCmd("go", withArgs(args...), withStream())
	return err
}

func runArgs(extra ...string) []string {
	args := []string{"run", ".", "run"}
	if _, err := os.Stat("engine.toml"); err == nil {
		args = append(args, "--config", "engine.toml")
	}
	return append(args, extra...)
}
