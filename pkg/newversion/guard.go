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

package newversion

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// GuardPolicy controls the comparison of the staged version against the
// version currently in the manifest.
type GuardPolicy string

const (
	// GuardOff never compares versions.
	GuardOff GuardPolicy = "off"
	// GuardWarn logs a warning when the staged version is not newer.
	GuardWarn GuardPolicy = "warn"
	// GuardEnforce refuses to apply a staged version that is not newer.
	GuardEnforce GuardPolicy = "enforce"
)

var errInvalidGuardPolicy = errors.New("invalid guard policy")

// ParseGuardPolicy parses s. The empty string means GuardOff.
func ParseGuardPolicy(s string) (GuardPolicy, error) {
	switch p := GuardPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return GuardOff, nil
	case GuardOff, GuardWarn, GuardEnforce:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q (expected %q, %q or %q)", errInvalidGuardPolicy, s, GuardOff, GuardWarn, GuardEnforce)
	}
}

// GuardResult is the outcome of a version comparison.
type GuardResult struct {
	Policy   GuardPolicy `json:"policy"`
	Current  string      `json:"current"`
	Staged   string      `json:"staged"`
	Newer    bool        `json:"newer"`
	Rejected bool        `json:"rejected"`
	Reason   string      `json:"reason,omitempty"`
}

// Check compares staged against current according to p.
func (p GuardPolicy) Check(current, staged string) GuardResult {
	res := GuardResult{Policy: p, Current: current, Staged: staged}
	if p == GuardOff || p == "" {
		return res
	}

	stagedV, err := semver.NewVersion(staged)
	if err != nil {
		res.Reason = fmt.Sprintf("staged version %q is not a semantic version: %v", staged, err)
		res.Rejected = p == GuardEnforce
		return res
	}

	currentV, err := semver.NewVersion(current)
	if err != nil {
		// Nothing to compare against.
		res.Newer = true
		res.Reason = fmt.Sprintf("current version %q is not a semantic version, comparison skipped", current)
		return res
	}

	res.Newer = stagedV.GreaterThan(currentV)
	if !res.Newer {
		res.Reason = fmt.Sprintf("staged version %s is not greater than current version %s", stagedV, currentV)
		res.Rejected = p == GuardEnforce
	}

	return res
}
