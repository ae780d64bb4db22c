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

// Package plist patches the version fields of Info.plist files.
//
// Only XML property lists are edited, and they are edited as text through a
// FieldEditor so that the rest of the file stays byte-identical. Binary
// property lists are detected and reported, never rewritten.
package plist

import (
	"bytes"
	"math/big"
	"regexp"
	"strings"
)

const (
	// KeyShortVersion holds the user facing version string.
	KeyShortVersion = "CFBundleShortVersionString"
	// KeyBuild holds the build number.
	KeyBuild = "CFBundleVersion"
)

var (
	xmlPrefix = []byte("<?xml")
	utf8BOM   = []byte{0xEF, 0xBB, 0xBF}

	buildNumberRe = regexp.MustCompile(`^\d+$`)
)

// FieldChange describes the edit applied, or not, to a single field.
type FieldChange struct {
	Key     string `json:"key"`
	Found   bool   `json:"found"`
	Old     string `json:"old,omitempty"`
	New     string `json:"new,omitempty"`
	Changed bool   `json:"changed"`
}

// Changes groups the field edits of one property list.
type Changes struct {
	ShortVersion FieldChange `json:"shortVersion"`
	Build        FieldChange `json:"build"`
}

// Modified reports whether at least one field changed.
func (c Changes) Modified() bool {
	return c.ShortVersion.Changed || c.Build.Changed
}

// IsXML reports whether data is an XML property list, i.e. starts with an XML
// declaration once leading whitespace and a UTF-8 BOM are ignored.
func IsXML(data []byte) bool {
	data = bytes.TrimLeft(data, " \t\r\n")
	data = bytes.TrimPrefix(data, utf8BOM)
	data = bytes.TrimLeft(data, " \t\r\n")
	return bytes.HasPrefix(data, xmlPrefix)
}

// NextBuildNumber returns current+1 when the trimmed current value consists of
// decimal digits only. Any other value is returned unchanged with false.
func NextBuildNumber(current string) (string, bool) {
	trimmed := strings.TrimSpace(current)
	if !buildNumberRe.MatchString(trimmed) {
		return current, false
	}

	n, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return current, false
	}

	return n.Add(n, big.NewInt(1)).String(), true
}

// PatchContent sets CFBundleShortVersionString to version and increments a
// numeric CFBundleVersion.
func PatchContent(content, version string, editor FieldEditor) (string, Changes) {
	changes := Changes{
		ShortVersion: FieldChange{Key: KeyShortVersion},
		Build:        FieldChange{Key: KeyBuild},
	}

	if old, ok := editor.Value(content, KeyShortVersion); ok {
		content, _ = editor.Replace(content, KeyShortVersion, version)
		changes.ShortVersion = FieldChange{
			Key:     KeyShortVersion,
			Found:   true,
			Old:     old,
			New:     version,
			Changed: old != version,
		}
	}

	if old, ok := editor.Value(content, KeyBuild); ok {
		changes.Build.Found = true
		changes.Build.Old = old
		changes.Build.New = old

		if next, ok := NextBuildNumber(old); ok {
			content, _ = editor.Replace(content, KeyBuild, next)
			changes.Build.New = next
			changes.Build.Changed = true
		}
	}

	return content, changes
}
