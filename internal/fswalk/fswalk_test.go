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

package fswalk_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alexandremahdhaoui/newversion/internal/fswalk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestWalk(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "App", "Info.plist"))
	touch(t, filepath.Join(root, "App", "nested", "deeper", "Info.plist"))
	touch(t, filepath.Join(root, "Pods", "Lib", "Info.plist"))
	touch(t, filepath.Join(root, "node_modules", "pkg", "Info.plist"))
	touch(t, filepath.Join(root, "App", "Other.plist"))

	got, err := fswalk.Walk(root, fswalk.SkipNames("Pods", "node_modules"), fswalk.NameIs("Info.plist"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "App", "Info.plist"),
		filepath.Join(root, "App", "nested", "deeper", "Info.plist"),
	}, got)
}

func TestWalk_NilSkip(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Pods", "Info.plist"))

	got, err := fswalk.Walk(root, nil, fswalk.NameIs("Info.plist"))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestWalk_RootNeverPruned(t *testing.T) {
	root := filepath.Join(t.TempDir(), "Pods")
	touch(t, filepath.Join(root, "Info.plist"))

	got, err := fswalk.Walk(root, fswalk.SkipNames("Pods"), fswalk.NameIs("Info.plist"))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestWalk_MissingRoot(t *testing.T) {
	_, err := fswalk.Walk(filepath.Join(t.TempDir(), "absent"), nil, fswalk.NameIs("Info.plist"))
	assert.Error(t, err)
}
