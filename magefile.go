//go:build mage

// Copyright 2021-2023
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "pvgrowth"
	modulePath = "github.com/penny-vault/pv-growth"

	// sampleDir holds {SYMBOL}.csv files used by the Sample target
	sampleDir = "cmd/testdata/csv"
)

// allow user to override go executable by running as GOEXE=xxx mage ... on unix-like systems
var goexe = "go"

func init() {
	if exe := os.Getenv("GOEXE"); exe != "" {
		goexe = exe
	}
}

// Build the pvgrowth binary with the commit hash and build date stamped in
func Build() error {
	fmt.Println("Building...")
	env := flagEnv()
	args := append([]string{"build", "-o", binaryName, "-ldflags", buildLdflags(env)}, buildFlags()...)
	return sh.RunWith(env, goexe, append(args, ".")...)
}

// Install pvgrowth into $GOPATH/bin
func Install() error {
	env := flagEnv()
	args := append([]string{"install", "-ldflags", buildLdflags(env)}, buildFlags()...)
	return sh.RunWith(env, goexe, append(args, ".")...)
}

// Clean up
func Clean() {
	fmt.Println("Cleaning...")
	os.RemoveAll(binaryName)
}

// Run vet followed by the race enabled test suites
func Check() {
	mg.SerialDeps(Vet, TestRace)
}

// Run tests
func Test() error {
	fmt.Println("Go Test")
	return sh.RunV(goexe, "test", "./...")
}

// Run tests with race detector; the price manager downloads concurrently
func TestRace() error {
	fmt.Println("Go Test Race")
	return sh.RunV(goexe, "test", "-race", "./...")
}

// Run go vet linter
func Vet() error {
	fmt.Println("Go Vet")
	if err := sh.Run(goexe, "vet", "./..."); err != nil {
		return fmt.Errorf("error running go vet: %w", err)
	}
	return nil
}

// Sample builds pvgrowth and simulates the bundled csv prices
func Sample() error {
	mg.Deps(Build)
	return sh.RunV("./"+binaryName, "simulate", "AAA", "BBB",
		"--provider", "csv", "--csv-dir", sampleDir,
		"--begin", "2021-01-28", "--end", "2021-02-04",
		"--benchmark", "BBB", "--currency", "USD")
}

// Helpers

func buildFlags() []string {
	if runtime.GOOS == "windows" {
		return []string{"-buildmode", "exe"}
	}
	return nil
}

func buildLdflags(env map[string]string) string {
	flags := "-X " + modulePath + "/common.buildDate=$BUILD_DATE"
	if env["COMMIT_HASH"] != "" {
		flags = "-X " + modulePath + "/common.commitHash=$COMMIT_HASH " + flags
	}
	return flags
}

func flagEnv() map[string]string {
	hash, _ := sh.Output("git", "rev-parse", "--short", "HEAD")
	return map[string]string{
		"COMMIT_HASH": hash,
		"BUILD_DATE":  time.Now().Format("2006-01-02T15:04:05Z0700"),
	}
}
