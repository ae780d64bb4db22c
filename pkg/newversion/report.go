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
	"time"

	"github.com/alexandremahdhaoui/newversion/pkg/configxml"
	"github.com/alexandremahdhaoui/newversion/pkg/plist"
	"github.com/google/uuid"
)

// Platform identifies an orchestrator.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformAll     Platform = "all"
)

// ManifestStatus is the outcome of the central manifest stage.
type ManifestStatus string

const (
	// StatusUpdated means the staged version was applied to the manifest.
	StatusUpdated ManifestStatus = "updated"
	// StatusMissingManifest means config.xml does not exist.
	StatusMissingManifest ManifestStatus = "missing-manifest"
	// StatusReadFailed means config.xml could not be read; handled like
	// StatusNoStagedVersion.
	StatusReadFailed ManifestStatus = "read-failed"
	// StatusNoStagedVersion means no staged version is set.
	StatusNoStagedVersion ManifestStatus = "no-staged-version"
	// StatusRejected means the version guard refused the staged version.
	StatusRejected ManifestStatus = "rejected"
	// StatusWriteFailed means parsing, mutating or writing config.xml failed.
	StatusWriteFailed ManifestStatus = "write-failed"
)

// Report is the outcome of one orchestrator run. Runs never return errors:
// everything that happened is recorded here.
type Report struct {
	RunID           string              `json:"runId"`
	Platform        Platform            `json:"platform"`
	ProjectRoot     string              `json:"projectRoot"`
	ManifestPath    string              `json:"manifestPath"`
	DryRun          bool                `json:"dryRun"`
	Status          ManifestStatus      `json:"status"`
	StagedVersion   string              `json:"stagedVersion,omitempty"`
	PreviousVersion string              `json:"previousVersion,omitempty"`
	Mutation        *configxml.Mutation `json:"mutation,omitempty"`
	Guard           *GuardResult        `json:"guard,omitempty"`
	AndroidBase     string              `json:"androidBase,omitempty"`
	IOSSkipped      bool                `json:"iosSkipped,omitempty"`
	Files           []plist.FileResult  `json:"files,omitempty"`
	Error           string              `json:"error,omitempty"`
	StartTime       time.Time           `json:"startTime"`
	Duration        float64             `json:"duration"`
}

func newReport(platform Platform, root string, dryRun bool) *Report {
	return &Report{
		RunID:       uuid.New().String(),
		Platform:    platform,
		ProjectRoot: root,
		DryRun:      dryRun,
		StartTime:   time.Now(),
	}
}

// Failed reports whether something went wrong, as opposed to a run that had
// nothing to do.
func (r *Report) Failed() bool {
	if r.Status == StatusWriteFailed || r.Status == StatusReadFailed || r.Error != "" {
		return true
	}

	for _, f := range r.Files {
		if f.Outcome == plist.OutcomeFailed {
			return true
		}
	}

	return false
}

// Count returns the number of property lists with the given outcome.
func (r *Report) Count(o plist.Outcome) int {
	n := 0
	for _, f := range r.Files {
		if f.Outcome == o {
			n++
		}
	}
	return n
}
