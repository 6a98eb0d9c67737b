//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "flickfinder"
	mainPath   = "./cmd/flickfinder"
)

// Default target to run when none is specified
var Default = Build

// Build compiles the flickfinder binary
func Build() error {
	mg.Deps(Vet)
	fmt.Println("Building", binaryName)
	return sh.RunV("go", "build", "-o", binaryName, mainPath)
}

// Test runs all tests with the race detector
func Test() error {
	fmt.Println("Running tests")
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Install copies the binary to $GOPATH/bin
func Install() error {
	mg.Deps(Build)

	gopath, err := sh.Output("go", "env", "GOPATH")
	if err != nil {
		return err
	}
	target := filepath.Join(gopath, "bin", binaryName)
	fmt.Println("Installing to", target)
	return sh.Copy(target, binaryName)
}

// Clean removes build artifacts
func Clean() error {
	return os.Remove(binaryName)
}
