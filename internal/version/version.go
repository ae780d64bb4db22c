// Copyright 2024 Alexandre Mahdhaoui
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

// Package version reports the build information of the new-version binary.
package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

// Info holds version information for a tool.
type Info struct {
	ToolName string
	// Version, CommitSHA and BuildTimestamp are set via ldflags.
	Version        string
	CommitSHA      string
	BuildTimestamp string
}

// New creates a new Info with default values.
func New(toolName string) *Info {
	return &Info{
		ToolName:       toolName,
		Version:        "dev",
		CommitSHA:      "unknown",
		BuildTimestamp: "unknown",
	}
}

// Get returns version information, falling back to the Go build info for the
// values not set via ldflags.
func (i *Info) Get() (version, commit, timestamp string) {
	version, commit, timestamp = i.Version, i.CommitSHA, i.BuildTimestamp

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version, commit, timestamp
	}

	if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if commit == "unknown" && len(setting.Value) >= 7 {
				commit = setting.Value[:7]
			}
		case "vcs.time":
			if timestamp == "unknown" {
				timestamp = setting.Value
			}
		}
	}

	return version, commit, timestamp
}

// Fprint writes the formatted version information to w.
func (i *Info) Fprint(w io.Writer) {
	version, commit, timestamp := i.Get()
	fmt.Fprintf(w, "%s version %s\n", i.ToolName, version)
	fmt.Fprintf(w, "  commit:    %s\n", commit)
	fmt.Fprintf(w, "  built:     %s\n", timestamp)
	fmt.Fprintf(w, "  go:        %s\n", runtime.Version())
	fmt.Fprintf(w, "  platform:  %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// String returns a one-line version string using the explicitly set Version field.
func (i *Info) String() string {
	return fmt.Sprintf("%s version %s", i.ToolName, i.Version)
}
