// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

var cmds = []string{
	"hgc-dump",
	"hgc-emap",
	"hgc-raw2lcio",
	"hgc-rawsim",
	"hgc-tdaq",
}

// Default target to run when none is specified.
var Default = Build

// Build builds all the commands into ./bin.
func Build() error {
	deps := make([]interface{}, len(cmds))
	for i, name := range cmds {
		deps[i] = mg.F(BuildCmd, name)
	}
	mg.Deps(deps...)
	fmt.Println("Compilation finished")
	return nil
}

// BuildCmd builds the named command into ./bin.
func BuildCmd(name string) error {
	fmt.Printf("Building %s executable...\n", name)
	return gocmd("build", "-o", "./bin/"+name, "./cmd/"+name)
}

// Test runs all the tests.
func Test() error {
	return gocmd("test", "./...")
}

// Check vets the code and runs all the tests.
func Check() error {
	err := gocmd("vet", "./...")
	if err != nil {
		return err
	}
	mg.Deps(Test)
	return nil
}

func gocmd(args ...string) error {
	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
