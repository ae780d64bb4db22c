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
	"regexp"
)

// FieldEditor finds a <key>/<string> pair in a text property list and
// replaces its string value. Only the first occurrence of key is considered.
type FieldEditor interface {
	// Value returns the raw string value of key and whether key was found.
	Value(content, key string) (string, bool)
	// Replace returns content with the string value of key set to value, and
	// whether key was found.
	Replace(content, key, value string) (string, bool)
}

// RegexFieldEditor is a FieldEditor matching the key/value pair with a
// whitespace-tolerant regular expression instead of parsing the document.
// The zero value is ready to use.
type RegexFieldEditor struct{}

var knownPatterns = map[string]*regexp.Regexp{
	KeyShortVersion: fieldPattern(KeyShortVersion),
	KeyBuild:        fieldPattern(KeyBuild),
}

func fieldPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`(<key>\s*` + regexp.QuoteMeta(key) + `\s*</key>\s*<string>)([\s\S]*?)(</string>)`)
}

func (RegexFieldEditor) pattern(key string) *regexp.Regexp {
	if re, ok := knownPatterns[key]; ok {
		return re
	}
	return fieldPattern(key)
}

// Value implements FieldEditor.
func (e RegexFieldEditor) Value(content, key string) (string, bool) {
	m := e.pattern(key).FindStringSubmatchIndex(content)
	if m == nil {
		return "", false
	}

	return content[m[4]:m[5]], true
}

// Replace implements FieldEditor.
func (e RegexFieldEditor) Replace(content, key, value string) (string, bool) {
	m := e.pattern(key).FindStringSubmatchIndex(content)
	if m == nil {
		return content, false
	}

	return content[:m[4]] + value + content[m[5]:], true
}
