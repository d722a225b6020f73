//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Build compiles the library and the staticlib command.
func Build() error {
	return sh.Run("go", "build", "./...")
}

// Test runs the full test suite.
func Test() error {
	mg.Deps(Build)
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet across the module.
func Vet() error {
	return sh.Run("go", "vet", "./...")
}

// Clean removes build artifacts left by integration tests.
func Clean() error {
	return sh.Rm("build")
}
