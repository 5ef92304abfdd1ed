//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the dolas binary into bin/.
func (Build) Engine() error {
	_, err := executeCmd("go", withArgs("build", "-o", "bin/dolas", "."), withStream())
	return err
}

type Test mg.Namespace

// Runs every package test.
func (Test) All() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}

// Runs the engine packages only; they need no window system.
func (Test) Engine() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withDir("engine"), withStream())
	return err
}
