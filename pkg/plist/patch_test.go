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

package plist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const plistFixture = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>CFBundleShortVersionString</key>
	<string>1.0.0</string>
	<key>CFBundleVersion</key>
	<string>%s</string>
</dict>
</plist>
`

func TestNextBuildNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{in: "41", want: "42", wantOK: true},
		{in: "0", want: "1", wantOK: true},
		{in: "9", want: "10", wantOK: true},
		{in: " 7 ", want: "8", wantOK: true},
		{in: "007", want: "8", wantOK: true},
		{in: "99999999999999999999", want: "100000000000000000000", wantOK: true},
		{in: "1.0-beta", want: "1.0-beta", wantOK: false},
		{in: "1.2.3", want: "1.2.3", wantOK: false},
		{in: "-1", want: "-1", wantOK: false},
		{in: "+1", want: "+1", wantOK: false},
		{in: "12a", want: "12a", wantOK: false},
		{in: "", want: "", wantOK: false},
		{in: "$(CURRENT_PROJECT_VERSION)", want: "$(CURRENT_PROJECT_VERSION)", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NextBuildNumber(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsXML(t *testing.T) {
	assert.True(t, IsXML([]byte(`<?xml version="1.0"?><plist/>`)))
	assert.True(t, IsXML([]byte("\n\t  <?xml version=\"1.0\"?>")))
	assert.True(t, IsXML([]byte("\xEF\xBB\xBF<?xml version=\"1.0\"?>")))
	assert.False(t, IsXML([]byte("bplist00\x00\x01")))
	assert.False(t, IsXML([]byte("<plist version=\"1.0\"></plist>")))
	assert.False(t, IsXML(nil))
}

func TestPatchContent_NumericBuild(t *testing.T) {
	in := sprintf(plistFixture, "41")

	out, changes := PatchContent(in, "2.3.0", RegexFieldEditor{})

	assert.Equal(t, sprintf(replaceShort(plistFixture, "2.3.0"), "42"), out)
	assert.True(t, changes.Modified())
	assert.Equal(t, FieldChange{Key: KeyShortVersion, Found: true, Old: "1.0.0", New: "2.3.0", Changed: true}, changes.ShortVersion)
	assert.Equal(t, FieldChange{Key: KeyBuild, Found: true, Old: "41", New: "42", Changed: true}, changes.Build)
}

func TestPatchContent_NonNumericBuildLeftUntouched(t *testing.T) {
	for _, build := range []string{"1.0-beta", "", " 1.2.3 "} {
		t.Run(build, func(t *testing.T) {
			in := sprintf(plistFixture, build)

			out, changes := PatchContent(in, "2.3.0", RegexFieldEditor{})

			assert.Equal(t, sprintf(replaceShort(plistFixture, "2.3.0"), build), out)
			assert.True(t, changes.ShortVersion.Changed)
			assert.True(t, changes.Build.Found)
			assert.False(t, changes.Build.Changed)
		})
	}
}

func TestPatchContent_MissingKeys(t *testing.T) {
	in := `<?xml version="1.0"?><plist><dict><key>CFBundleName</key><string>App</string></dict></plist>`

	out, changes := PatchContent(in, "2.3.0", RegexFieldEditor{})

	assert.Equal(t, in, out)
	assert.False(t, changes.Modified())
	assert.False(t, changes.ShortVersion.Found)
	assert.False(t, changes.Build.Found)
}

func TestPatchContent_SameVersionIsNotAChange(t *testing.T) {
	in := sprintf(plistFixture, "beta")

	_, changes := PatchContent(in, "1.0.0", RegexFieldEditor{})

	assert.True(t, changes.ShortVersion.Found)
	assert.False(t, changes.Modified())
}
