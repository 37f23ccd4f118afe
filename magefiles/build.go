//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Compiles every package and the testbed binary.
func (Build) Engine() error {
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/tinyfx", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Builds with the release tag, which turns contract assertions off.
func (Build) Release() error {
	if _, err := executeCmd("go", withArgs("build", "-tags", "release", "-o", "bin/tinyfx", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the unit tests of the engine packages.
func (Build) Test() error {
	mg.Deps(Build.Vet)
	if _, err := executeCmd("go", withArgs("test", "./engine/..."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs go vet over the module.
func (Build) Vet() error {
	_, err := executeCmd("go", withArgs("vet", "./..."), withStream())
	return err
}

// Runs go mod tidy.
func (Build) Tidy() error {
	return goTidy()
}
