//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

type Test mg.Namespace

// Unit runs the package tests.
func (Test) Unit() error {
	return sh.RunV("go", "test", "./internal/...")
}

// Race runs the package tests with the race detector.
func (Test) Race() error {
	mg.Deps(Test.Unit)
	return sh.RunV("go", "test", "-race", "./internal/batch/...", "./internal/watch/...", "./internal/material/...")
}

// Vet runs go vet over the module.
func (Test) Vet() error {
	return sh.RunV("go", "vet", "./...")
}
