//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

// Default target to run when none is specified
// If not set, running mage will list available targets
var Default = Build

func Build() error {
	mg.Deps(BuildEvb)
	fmt.Println("Compilation finished")
	return nil
}

// BuildEvb needs HDF5 headers and libraries, passed through CGO_CFLAGS and CGO_LDFLAGS.
func BuildEvb() error {
	fmt.Println("Building evb executable...")
	return goCmd("build", "-o", "./bin/evb", "./evb").Run()
}

func Test() error {
	fmt.Println("Running tests...")
	return goCmd("test", "./...").Run()
}

func goCmd(args ...string) *exec.Cmd {
	ldflags := os.Getenv("CGO_LDFLAGS")
	cflags := os.Getenv("CGO_CFLAGS")
	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(),
		"CGO_ENABLED=1",
		fmt.Sprintf("CGO_LDFLAGS=%s", ldflags),
		fmt.Sprintf("CGO_CFLAGS=%s", cflags))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}
