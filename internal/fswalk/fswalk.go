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

// Package fswalk provides a depth-first directory traversal driven by two
// predicates: one deciding which directories to prune and one selecting the
// files to collect.
package fswalk

import (
	"io/fs"
	"path/filepath"
)

// DirPredicate reports whether the directory with the given base name must be
// skipped, together with its whole subtree.
type DirPredicate func(name string) bool

// FilePredicate reports whether the file with the given base name is a target.
type FilePredicate func(name string) bool

// SkipNames returns a DirPredicate skipping every directory whose base name is
// one of names.
func SkipNames(names ...string) DirPredicate {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(name string) bool {
		_, ok := set[name]
		return ok
	}
}

// NameIs returns a FilePredicate matching files named exactly name.
func NameIs(name string) FilePredicate {
	return func(n string) bool { return n == name }
}

// Walk traverses root depth-first in lexical order and returns the paths of
// every file selected by match, excluding the subtrees pruned by skip.
// The root directory itself is never pruned. A nil skip prunes nothing.
func Walk(root string, skip DirPredicate, match FilePredicate) ([]string, error) {
	var out []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && skip != nil && skip(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if match(d.Name()) {
			out = append(out, path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
