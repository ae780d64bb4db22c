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

package main

import (
	"context"
	"fmt"

	"github.com/alexandremahdhaoui/newversion/internal/config"
	"github.com/alexandremahdhaoui/newversion/internal/logging"
	"github.com/alexandremahdhaoui/newversion/internal/mcpserver"
	"github.com/alexandremahdhaoui/newversion/pkg/newversion"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SetVersionInput is the input of the set-version tools.
type SetVersionInput struct {
	ProjectRoot string `json:"projectRoot,omitempty" jsonschema:"Cordova project root, defaults to the server working directory"`
	DryRun      bool   `json:"dryRun,omitempty" jsonschema:"compute every change without writing any file"`
}

// runMCPServer starts the new-version MCP server with stdio transport.
func runMCPServer() error {
	server := mcpserver.New(Name, Version)

	mcpserver.RegisterTool(server, &mcp.Tool{
		Name:        "set-version-ios",
		Description: "Apply the staged NEW_VERSION to config.xml and to every iOS Info.plist",
	}, handleSetVersion(newversion.PlatformIOS))

	mcpserver.RegisterTool(server, &mcp.Tool{
		Name:        "set-version-android",
		Description: "Apply the staged NEW_VERSION to config.xml and increment android-versionCode",
	}, handleSetVersion(newversion.PlatformAndroid))

	mcpserver.RegisterTool(server, &mcp.Tool{
		Name:        "set-version-all",
		Description: "Apply the staged NEW_VERSION for both iOS and Android",
	}, handleSetVersion(newversion.PlatformAll))

	return server.Run(context.Background())
}

func handleSetVersion(
	platform newversion.Platform,
) func(context.Context, *mcp.CallToolRequest, SetVersionInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SetVersionInput) (*mcp.CallToolResult, any, error) {
		envs, err := config.ReadEnvs()
		if err != nil {
			res, _ := mcpserver.Result(fmt.Sprintf("Invalid environment: %v", err), true, nil)
			return res, nil, nil
		}

		settings, err := config.Load(envs, input.ProjectRoot)
		if err != nil {
			res, _ := mcpserver.Result(fmt.Sprintf("Invalid configuration: %v", err), true, nil)
			return res, nil, nil
		}
		if input.DryRun {
			settings.DryRun = true
		}

		log := logging.NewDefault(logging.TagBase)
		if err := log.SetLevel(settings.LogLevel); err != nil {
			res, _ := mcpserver.Result(fmt.Sprintf("Invalid configuration: %v", err), true, nil)
			return res, nil, nil
		}

		report := execute(ctx, platform, settings, log)

		res, out := mcpserver.Result(summary(report), report.Failed(), report)
		return res, out, nil
	}
}
