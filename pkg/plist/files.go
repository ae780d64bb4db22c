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
	"errors"
	"fmt"
	"os"

	"github.com/alexandremahdhaoui/newversion/internal/fswalk"
	"github.com/alexandremahdhaoui/newversion/internal/logging"
	"github.com/alexandremahdhaoui/newversion/pkg/flaterrors"
)

const (
	// FileName is the name of the property lists to patch.
	FileName = "Info.plist"

	DirNodeModules = "node_modules"
	DirPods        = "Pods"
)

// DefaultExcludeDirs lists the dependency directories never traversed.
var DefaultExcludeDirs = []string{DirNodeModules, DirPods}

var (
	ErrReadPlist  = errors.New("reading property list")
	ErrWritePlist = errors.New("writing property list")
	ErrFindPlists = errors.New("finding property lists")
)

// Outcome is the result of patching one property list.
type Outcome string

const (
	// OutcomeUpdated means at least one field changed and the file was written
	// (or would have been, in dry-run mode).
	OutcomeUpdated Outcome = "updated"
	// OutcomeUnchanged means no field changed; the file was not written.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeBinary means the file is a binary property list and was skipped.
	OutcomeBinary Outcome = "binary"
	// OutcomeFailed means reading or writing the file failed.
	OutcomeFailed Outcome = "failed"
)

// FileResult is the outcome of patching one property list.
type FileResult struct {
	Path        string  `json:"path"`
	Outcome     Outcome `json:"outcome"`
	Changes     Changes `json:"changes"`
	Remediation string  `json:"remediation,omitempty"`
	Error       string  `json:"error,omitempty"`

	Err error `json:"-"`
}

// FS is the file access needed by the Patcher.
type FS interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
}

// OSFS implements FS on the local filesystem.
type OSFS struct{}

// ReadFile implements FS.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile implements FS. Existing file permissions are kept.
func (OSFS) WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

// ConvertCommand returns the command converting a binary property list at
// path to XML.
func ConvertCommand(path string) string {
	return fmt.Sprintf(`plutil -convert xml1 "%s"`, path)
}

// FindInfoPlists returns every Info.plist under root, depth-first, skipping
// the directories named in exclude. A nil exclude means DefaultExcludeDirs.
func FindInfoPlists(root string, exclude []string) ([]string, error) {
	if exclude == nil {
		exclude = DefaultExcludeDirs
	}

	paths, err := fswalk.Walk(root, fswalk.SkipNames(exclude...), fswalk.NameIs(FileName))
	if err != nil {
		return nil, flaterrors.Join(err, ErrFindPlists)
	}

	return paths, nil
}

// Patcher applies a version to property list files.
type Patcher struct {
	Editor FieldEditor
	FS     FS
	Log    *logging.Logger
	// DryRun computes the changes without writing anything.
	DryRun bool
}

// NewPatcher returns a Patcher using the regex editor and the local filesystem.
func NewPatcher(log *logging.Logger) *Patcher {
	if log == nil {
		log = logging.Nop()
	}

	return &Patcher{
		Editor: RegexFieldEditor{},
		FS:     OSFS{},
		Log:    log,
	}
}

// PatchFiles patches every path in order. A failure on one file never stops
// the others.
func (p *Patcher) PatchFiles(paths []string, version string) []FileResult {
	results := make([]FileResult, 0, len(paths))
	for _, path := range paths {
		results = append(results, p.PatchFile(path, version))
	}
	return results
}

// PatchFile patches a single property list. The file is written only when at
// least one field changed.
func (p *Patcher) PatchFile(path, version string) FileResult {
	res := FileResult{Path: path}

	data, err := p.FS.ReadFile(path)
	if err != nil {
		return p.fail(res, flaterrors.Join(err, ErrReadPlist))
	}

	if !IsXML(data) {
		res.Outcome = OutcomeBinary
		res.Remediation = ConvertCommand(path)
		p.Log.Infof("Binary Info.plist detected at %s. Convert it with: %s", path, res.Remediation)
		return res
	}

	content, changes := PatchContent(string(data), version, p.Editor)
	res.Changes = changes
	p.logChanges(path, changes)

	if !changes.Modified() {
		res.Outcome = OutcomeUnchanged
		p.Log.Infof("Info.plist unchanged: %s", path)
		return res
	}

	if !p.DryRun {
		if err := p.FS.WriteFile(path, []byte(content)); err != nil {
			return p.fail(res, flaterrors.Join(err, ErrWritePlist))
		}
	}

	res.Outcome = OutcomeUpdated
	if p.DryRun {
		p.Log.Infof("Dry run, Info.plist not saved: %s", path)
	} else {
		p.Log.Infof("Info.plist saved: %s", path)
	}

	return res
}

func (p *Patcher) logChanges(path string, c Changes) {
	if c.ShortVersion.Found {
		p.Log.Infof("%s updated in %s (%s -> %s)", KeyShortVersion, path, c.ShortVersion.Old, c.ShortVersion.New)
	} else {
		p.Log.Infof("%s not found in %s", KeyShortVersion, path)
	}

	switch {
	case !c.Build.Found:
		p.Log.Infof("%s not found in %s", KeyBuild, path)
	case c.Build.Changed:
		p.Log.Infof("%s updated in %s (%s -> %s)", KeyBuild, path, c.Build.Old, c.Build.New)
	default:
		p.Log.Infof("%s in %s is not numeric (%q), left untouched", KeyBuild, path, c.Build.Old)
	}
}

func (p *Patcher) fail(res FileResult, err error) FileResult {
	res.Outcome = OutcomeFailed
	res.Err = err
	res.Error = err.Error()
	p.Log.Errorf(err, "Failed to update %s", res.Path)
	return res
}

