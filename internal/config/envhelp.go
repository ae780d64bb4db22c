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
	"fmt"
	"reflect"
	"strings"
)

// EnvHelp lists the environment variables read into Envs, one per line, with
// their default when they have one.
func EnvHelp() string {
	type entry struct{ name, def string }

	var (
		entries []entry
		width   int
	)

	rt := reflect.TypeFor[Envs]()
	for i := range rt.NumField() {
		tag, ok := rt.Field(i).Tag.Lookup("env")
		if !ok {
			continue
		}

		name, _, _ := strings.Cut(tag, ",")
		def, _ := rt.Field(i).Tag.Lookup("envDefault")
		entries = append(entries, entry{name: name, def: def})

		width = max(width, len(name))
	}

	var b strings.Builder
	for _, e := range entries {
		if e.def == "" {
			fmt.Fprintf(&b, "  %s\n", e.name)
			continue
		}
		fmt.Fprintf(&b, "  %-*s  (default %q)\n", width, e.name, e.def)
	}

	return b.String()
}
