//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

type Build mg.Namespace

var commands = []string{"mechlib2scene", "gamez2scene", "inspect"}

// All builds every command into bin/.
func (Build) All() error {
	for _, c := range commands {
		if err := sh.RunV("go", "build", "-o", filepath.Join("bin", c), "./cmd/"+c); err != nil {
			return err
		}
	}
	return nil
}

// Clean removes bin/.
func (Build) Clean() error {
	return sh.Rm("bin")
}
