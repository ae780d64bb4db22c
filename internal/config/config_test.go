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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alexandremahdhaoui/newversion/pkg/newversion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadEnvs(t *testing.T) {
	t.Setenv("NEWVERSION_PROJECT_ROOT", "/tmp/app")
	t.Setenv("NEWVERSION_GUARD", "warn")
	t.Setenv("NEWVERSION_DRY_RUN", "true")

	envs, err := ReadEnvs()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/app", envs.ProjectRoot)
	assert.Equal(t, "warn", envs.Guard)
	assert.True(t, envs.DryRun)
	assert.Equal(t, "info", envs.LogLevel)
	assert.Equal(t, "new-version", envs.ReportS3Prefix)
}

func TestReadEnvs_InvalidBool(t *testing.T) {
	t.Setenv("NEWVERSION_DRY_RUN", "maybe")

	_, err := ReadEnvs()
	assert.ErrorIs(t, err, errReadingEnvs)
}

func TestReadFile(t *testing.T) {
	root := t.TempDir()
	content := "preferenceName: STAGED\nexcludeDirs: [Pods, build]\nguard: enforce\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(content), 0o644))

	f, err := ReadFile(root)
	require.NoError(t, err)

	assert.Equal(t, File{PreferenceName: "STAGED", ExcludeDirs: []string{"Pods", "build"}, Guard: "enforce"}, f)
}

func TestReadFile_Missing(t *testing.T) {
	f, err := ReadFile(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, File{}, f)
}

func TestReadFile_Invalid(t *testing.T) {
	tests := map[string]string{
		"malformed":       "excludeDirs: [",
		"bad guard":       "guard: sometimes\n",
		"path in exclude": "excludeDirs: [a/b]\n",
		"spaced name":     "preferenceName: NEW VERSION\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(content), 0o644))

			_, err := ReadFile(root)
			assert.Error(t, err)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	root := t.TempDir()

	s, err := Load(Envs{LogLevel: "info"}, root)
	require.NoError(t, err)

	assert.Equal(t, root, s.ProjectRoot)
	assert.Equal(t, "NEW_VERSION", s.PreferenceName)
	assert.Equal(t, []string{"node_modules", "Pods"}, s.ExcludeDirs)
	assert.Equal(t, newversion.GuardOff, s.Guard)
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("guard: enforce\n"), 0o644))

	s, err := Load(Envs{ProjectRoot: root, Guard: "warn"}, "")
	require.NoError(t, err)

	assert.Equal(t, root, s.ProjectRoot)
	assert.Equal(t, newversion.GuardWarn, s.Guard)

	opts := s.Options()
	assert.Equal(t, newversion.GuardWarn, opts.Guard)
	assert.Equal(t, "NEW_VERSION", opts.PreferenceName)
}

func TestLoad_InvalidEnvGuard(t *testing.T) {
	_, err := Load(Envs{Guard: "loud"}, t.TempDir())
	assert.ErrorIs(t, err, errReadingEnvs)
}
