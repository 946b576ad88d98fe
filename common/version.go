// Copyright 2021-2023
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
)

// set with -ldflags by the mage build target
var (
	commitHash string
	buildDate  string
)

// Version is a SemVer 2.0.0 build version
type Version struct {
	Major  int
	Minor  int
	Patch  int
	Suffix string
}

func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Suffix == "" {
		return s
	}

	s = fmt.Sprintf("%s-%s", s, v.Suffix)
	if commitHash != "" {
		s = fmt.Sprintf("%s+%s", s, strings.ToLower(commitHash))
	}
	return s
}

// Dependencies returns the modules compiled into the binary as sorted
// path="version" pairs
func Dependencies() []string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return []string{}
	}

	deps := make([]string, 0, len(bi.Deps))
	for _, dep := range bi.Deps {
		deps = append(deps, fmt.Sprintf("%s=%q", dep.Path, dep.Version))
	}
	sort.Strings(deps)
	return deps
}

// BuildVersionString is the text printed by `pvgrowth version`
func BuildVersionString() string {
	date := buildDate
	if date == "" {
		date = "unknown"
	}

	commit := commitHash
	if commit == "" {
		commit = "unknown"
	}

	sb := &strings.Builder{}
	fmt.Fprintf(sb, "pvgrowth v%s %s/%s\n\n", CurrentVersion, runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(sb, "Build Date: %s\n", date)
	fmt.Fprintf(sb, "Commit: %s\n", commit)
	fmt.Fprintf(sb, "Built with: %s\n", runtime.Version())

	deps := Dependencies()
	if len(deps) > 0 {
		sb.WriteString("\nDependencies:\n\n")
		sb.WriteString(strings.Join(deps, "\n"))
		sb.WriteString("\n")
	}

	return sb.String()
}
