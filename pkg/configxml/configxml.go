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

// Package configxml reads and rewrites the Cordova central manifest
// (config.xml).
//
// The manifest is kept as an element tree so that a load/mutate/save cycle
// leaves every unrelated node (comments, attribute order, other preferences,
// whitespace) untouched.
package configxml

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexandremahdhaoui/newversion/pkg/flaterrors"
	"github.com/beevik/etree"
)

const (
	// FileName is the name of the central manifest at the project root.
	FileName = "config.xml"

	// DefaultPreferenceName is the preference carrying the staged version.
	DefaultPreferenceName = "NEW_VERSION"

	RootElement        = "widget"
	PreferenceElement  = "preference"
	AttrName           = "name"
	AttrValue          = "value"
	AttrVersion        = "version"
	AttrAndroidVersion = "android-versionCode"

	xmlDeclaration = `version="1.0" encoding="UTF-8"`
)

var (
	ErrReadManifest       = errors.New("reading manifest")
	ErrWriteManifest      = errors.New("writing manifest")
	ErrInvalidVersionCode = errors.New("invalid android-versionCode")
)

// Manifest is a parsed central manifest.
type Manifest struct {
	doc  *etree.Document
	root *etree.Element
}

// VersionCodeChange records an android-versionCode increment.
type VersionCodeChange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Mutation describes what Apply changed.
type Mutation struct {
	PreferenceRemoved bool               `json:"preferenceRemoved"`
	PreviousVersion   string             `json:"previousVersion"`
	Version           string             `json:"version"`
	VersionCode       *VersionCodeChange `json:"versionCode,omitempty"`
}

// Options controls Apply.
type Options struct {
	// PreferenceName defaults to DefaultPreferenceName.
	PreferenceName string
	// VersionCode enables the android-versionCode increment.
	VersionCode bool
}

// Load parses the manifest at path.
func Load(path string) (*Manifest, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, flaterrors.Join(err, ErrReadManifest)
	}

	return fromDocument(doc)
}

// Parse parses a manifest held in memory.
func Parse(data []byte) (*Manifest, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, flaterrors.Join(err, ErrReadManifest)
	}

	return fromDocument(doc)
}

func fromDocument(doc *etree.Document) (*Manifest, error) {
	root := doc.Root()
	if root == nil {
		return nil, flaterrors.Join(errors.New("no root element"), ErrReadManifest)
	}

	if root.Tag != RootElement {
		return nil, flaterrors.Join(
			fmt.Errorf("root element is <%s>, expected <%s>", root.Tag, RootElement),
			ErrReadManifest,
		)
	}

	return &Manifest{doc: doc, root: root}, nil
}

// ReadStagedVersion returns the value of the preference called name in the
// manifest at path. An empty name means DefaultPreferenceName. A manifest
// without that preference yields an empty string and no error.
func ReadStagedVersion(path, name string) (string, error) {
	m, err := Load(path)
	if err != nil {
		return "", err
	}

	v, _ := m.Preference(name)
	return v, nil
}

// Preference returns the trimmed value of the first preference called name.
func (m *Manifest) Preference(name string) (string, bool) {
	el := m.findPreference(name)
	if el == nil {
		return "", false
	}

	return strings.TrimSpace(el.SelectAttrValue(AttrValue, "")), true
}

func (m *Manifest) findPreference(name string) *etree.Element {
	if name == "" {
		name = DefaultPreferenceName
	}

	for _, el := range m.root.SelectElements(PreferenceElement) {
		if el.SelectAttrValue(AttrName, "") == name {
			return el
		}
	}

	return nil
}

// RemovePreference removes the first preference called name, along with the
// indentation preceding it. It reports whether a preference was removed.
func (m *Manifest) RemovePreference(name string) bool {
	el := m.findPreference(name)
	if el == nil {
		return false
	}

	idx := el.Index()
	m.root.RemoveChildAt(idx)

	if idx > 0 {
		if cd, ok := m.root.Child[idx-1].(*etree.CharData); ok && strings.TrimSpace(cd.Data) == "" {
			m.root.RemoveChildAt(idx - 1)
		}
	}

	return true
}

// Version returns the root version attribute.
func (m *Manifest) Version() string {
	return m.root.SelectAttrValue(AttrVersion, "")
}

// SetVersion overwrites the root version attribute.
func (m *Manifest) SetVersion(v string) {
	m.root.CreateAttr(AttrVersion, v)
}

// VersionCode returns the android-versionCode attribute and whether it is set.
// An empty attribute counts as unset.
func (m *Manifest) VersionCode() (string, bool) {
	v := strings.TrimSpace(m.root.SelectAttrValue(AttrAndroidVersion, ""))
	return v, v != ""
}

// IncrementVersionCode adds exactly one to android-versionCode. It reports
// false when the attribute is unset.
func (m *Manifest) IncrementVersionCode() (VersionCodeChange, bool, error) {
	raw, ok := m.VersionCode()
	if !ok {
		return VersionCodeChange{}, false, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return VersionCodeChange{}, false, flaterrors.Join(
			fmt.Errorf("%q is not an integer", raw),
			ErrInvalidVersionCode,
		)
	}

	change := VersionCodeChange{From: n, To: n + 1}
	m.root.CreateAttr(AttrAndroidVersion, strconv.Itoa(change.To))

	return change, true, nil
}

// Apply removes the staging preference, sets the version and, when enabled,
// increments android-versionCode. The tree may be partially mutated when an
// error is returned; callers must not save it.
func (m *Manifest) Apply(version string, opts Options) (Mutation, error) {
	mut := Mutation{
		PreviousVersion: m.Version(),
		Version:         version,
	}

	mut.PreferenceRemoved = m.RemovePreference(opts.PreferenceName)
	m.SetVersion(version)

	if !opts.VersionCode {
		return mut, nil
	}

	change, ok, err := m.IncrementVersionCode()
	if err != nil {
		return mut, err
	}
	if ok {
		mut.VersionCode = &change
	}

	return mut, nil
}

// Bytes serializes the manifest, guaranteeing a UTF-8 XML declaration.
func (m *Manifest) Bytes() ([]byte, error) {
	m.ensureDeclaration()

	b, err := m.doc.WriteToBytes()
	if err != nil {
		return nil, flaterrors.Join(err, ErrWriteManifest)
	}

	return b, nil
}

// Save serializes the manifest and overwrites path.
func (m *Manifest) Save(path string) error {
	m.ensureDeclaration()

	if err := m.doc.WriteToFile(path); err != nil {
		return flaterrors.Join(err, ErrWriteManifest)
	}

	return nil
}

func (m *Manifest) ensureDeclaration() {
	for _, t := range m.doc.Child {
		if pi, ok := t.(*etree.ProcInst); ok && pi.Target == "xml" {
			pi.Inst = xmlDeclaration
			return
		}
	}

	pi := m.doc.CreateProcInst("xml", xmlDeclaration)
	m.doc.RemoveChildAt(pi.Index())
	m.doc.InsertChildAt(0, pi)
	m.doc.InsertChildAt(1, etree.NewText("\n"))
}
