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

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/alexandremahdhaoui/newversion/internal/version"
)

// Config holds the configuration for CLI bootstrap.
type Config struct {
	// Name is the command name.
	Name string

	// Version information (typically set via ldflags)
	Version        string
	CommitSHA      string
	BuildTimestamp string

	// RunCLI executes the command in normal CLI mode with the arguments
	// following the program name.
	RunCLI func(args []string) error

	// RunMCP executes the command in MCP server mode (optional).
	// If nil, --mcp flag will result in an error
	RunMCP func() error

	// FailureHandler is called when RunCLI returns an error (optional).
	FailureHandler func(error)
}

// Mode is what Bootstrap decided to do with the arguments.
type Mode int

const (
	ModeCLI Mode = iota
	ModeVersion
	ModeMCP
)

// DetectMode inspects args (without the program name).
func DetectMode(args []string) Mode {
	for _, arg := range args {
		switch arg {
		case "--version", "-v":
			return ModeVersion
		case "--mcp":
			return ModeMCP
		}
	}

	if len(args) > 0 && args[0] == "version" {
		return ModeVersion
	}

	return ModeCLI
}

// Run executes cfg for args and returns the process exit code.
func Run(cfg Config, args []string, stdout, stderr io.Writer) int {
	switch DetectMode(args) {
	case ModeVersion:
		info := version.New(cfg.Name)
		info.Version = cfg.Version
		info.CommitSHA = cfg.CommitSHA
		info.BuildTimestamp = cfg.BuildTimestamp
		info.Fprint(stdout)
		return 0

	case ModeMCP:
		if cfg.RunMCP == nil {
			fmt.Fprintf(stderr, "Error: MCP mode not supported for %s\n", cfg.Name)
			return 1
		}
		if err := cfg.RunMCP(); err != nil {
			fmt.Fprintf(stderr, "MCP server error: %v\n", err)
			return 1
		}
		return 0
	}

	if err := cfg.RunCLI(args); err != nil {
		if cfg.FailureHandler != nil {
			cfg.FailureHandler(err)
		}
		return 1
	}

	return 0
}

// Bootstrap runs cfg with the process arguments and exits.
//
// This function will call os.Exit and never return.
func Bootstrap(cfg Config) {
	os.Exit(Run(cfg, os.Args[1:], os.Stdout, os.Stderr))
}
