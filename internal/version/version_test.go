//go:build unit

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

package version_test

import (
	"bytes"
	"testing"

	"github.com/alexandremahdhaoui/newversion/internal/version"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	info := version.New("new-version")

	assert.Equal(t, "new-version", info.ToolName)
	assert.Equal(t, "dev", info.Version)
	assert.Equal(t, "unknown", info.CommitSHA)
	assert.Equal(t, "unknown", info.BuildTimestamp)
}

func TestGet_LdflagsWin(t *testing.T) {
	info := version.New("new-version")
	info.Version = "v1.0.0"
	info.CommitSHA = "abc1234"
	info.BuildTimestamp = "2025-01-01T00:00:00Z"

	v, c, ts := info.Get()
	assert.Equal(t, "v1.0.0", v)
	assert.Equal(t, "abc1234", c)
	assert.Equal(t, "2025-01-01T00:00:00Z", ts)
}

func TestFprint(t *testing.T) {
	info := version.New("new-version")
	info.Version = "v1.2.3"

	var buf bytes.Buffer
	info.Fprint(&buf)

	assert.Contains(t, buf.String(), "new-version version v1.2.3")
	assert.Contains(t, buf.String(), "go:")
	assert.Equal(t, "new-version version v1.2.3", info.String())
}
