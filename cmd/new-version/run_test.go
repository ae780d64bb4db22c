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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexandremahdhaoui/newversion/pkg/configxml"
	"github.com/alexandremahdhaoui/newversion/pkg/newversion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `<?xml version='1.0' encoding='utf-8'?>
<widget id="com.example.app" version="1.0.0" android-versionCode="7">
    <preference name="NEW_VERSION" value="1.4.0" />
</widget>
`

const testPlist = `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>CFBundleShortVersionString</key>
	<string>1.0.0</string>
	<key>CFBundleVersion</key>
	<string>12</string>
</dict>
</plist>
`

func newTestProject(t *testing.T, manifest string) string {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, configxml.FileName), []byte(manifest), 0o644))

	plistPath := filepath.Join(root, "platforms", "ios", "App", "Info.plist")
	require.NoError(t, os.MkdirAll(filepath.Dir(plistPath), 0o755))
	require.NoError(t, os.WriteFile(plistPath, []byte(testPlist), 0o644))

	return root
}

func execRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stderr bytes.Buffer
	cmd := newRootCmd(&stderr)
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&stderr)

	err := cmd.ExecuteContext(context.Background())
	return stderr.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRootCmd_All(t *testing.T) {
	root := newTestProject(t, testManifest)
	reportPath := filepath.Join(t.TempDir(), "report.yaml")

	logs, err := execRoot(t, "all", "--project-root", root, "--report", reportPath)
	require.NoError(t, err)

	manifest := readFile(t, filepath.Join(root, configxml.FileName))
	assert.Contains(t, manifest, `version="1.4.0"`)
	assert.Contains(t, manifest, `android-versionCode="8"`)
	assert.NotContains(t, manifest, "NEW_VERSION")

	info := readFile(t, filepath.Join(root, "platforms", "ios", "App", "Info.plist"))
	assert.Contains(t, info, "<string>1.4.0</string>")
	assert.Contains(t, info, "<string>13</string>")

	report := readFile(t, reportPath)
	assert.Contains(t, report, "platform: all")
	assert.Contains(t, report, "status: updated")

	assert.Contains(t, logs, "[New Version]")
}

func TestRootCmd_DryRun(t *testing.T) {
	root := newTestProject(t, testManifest)

	_, err := execRoot(t, "ios", "--project-root", root, "--dry-run")
	require.NoError(t, err)

	assert.Equal(t, testManifest, readFile(t, filepath.Join(root, configxml.FileName)))
	assert.Equal(t, testPlist, readFile(t, filepath.Join(root, "platforms", "ios", "App", "Info.plist")))
}

func TestRootCmd_Strict(t *testing.T) {
	invalid := `<widget version="1.0.0" android-versionCode="seven"><preference name="NEW_VERSION" value="1.4.0"/></widget>`

	t.Run("lenient", func(t *testing.T) {
		root := newTestProject(t, invalid)
		_, err := execRoot(t, "android", "--project-root", root)
		assert.NoError(t, err)
	})

	t.Run("strict", func(t *testing.T) {
		root := newTestProject(t, invalid)
		_, err := execRoot(t, "android", "--project-root", root, "--strict")
		assert.ErrorIs(t, err, errStrictFailure)
	})

	t.Run("nothing staged is not a failure", func(t *testing.T) {
		root := newTestProject(t, `<widget version="1.0.0"/>`)
		_, err := execRoot(t, "android", "--project-root", root, "--strict")
		assert.NoError(t, err)
	})
}

func TestRootCmd_InvalidGuard(t *testing.T) {
	root := newTestProject(t, testManifest)

	_, err := execRoot(t, "ios", "--project-root", root, "--guard", "sometimes")
	assert.ErrorIs(t, err, errLoadingSettings)
	assert.Equal(t, testManifest, readFile(t, filepath.Join(root, configxml.FileName)))
}

func TestRootCmd_RejectsArgs(t *testing.T) {
	_, err := execRoot(t, "ios", "extra")
	assert.Error(t, err)
}

func TestHandleSetVersion(t *testing.T) {
	root := newTestProject(t, testManifest)

	res, out, err := handleSetVersion(newversion.PlatformAndroid)(
		context.Background(), nil, SetVersionInput{ProjectRoot: root},
	)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.False(t, res.IsError)

	report, ok := out.(*newversion.Report)
	require.True(t, ok)
	assert.Equal(t, newversion.StatusUpdated, report.Status)
	assert.Equal(t, "1.4.0", report.StagedVersion)

	// The staging preference was consumed.
	res, out, err = handleSetVersion(newversion.PlatformIOS)(
		context.Background(), nil, SetVersionInput{ProjectRoot: root},
	)
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, newversion.StatusNoStagedVersion, out.(*newversion.Report).Status)
}

func TestHandleSetVersion_FailureIsReported(t *testing.T) {
	root := newTestProject(t, `<widget version="1.0.0"><preference name="NEW_VERSION"`)

	res, out, err := handleSetVersion(newversion.PlatformIOS)(
		context.Background(), nil, SetVersionInput{ProjectRoot: root, DryRun: true},
	)
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, newversion.StatusReadFailed, out.(*newversion.Report).Status)
}

func TestSummary(t *testing.T) {
	report := &newversion.Report{
		RunID:         "abc",
		Platform:      newversion.PlatformAndroid,
		Status:        newversion.StatusUpdated,
		StagedVersion: "2.0.0",
		Mutation: &configxml.Mutation{
			Version:     "2.0.0",
			VersionCode: &configxml.VersionCodeChange{From: 4, To: 5},
		},
		DryRun: true,
	}

	assert.Equal(t,
		"android run abc: config.xml updated, version 2.0.0, android-versionCode 5 (dry run)",
		summary(report),
	)
}
