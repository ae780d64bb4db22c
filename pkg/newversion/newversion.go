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

// Package newversion propagates the staged version of a Cordova project into
// its build manifests.
//
// A staged version is the value of the NEW_VERSION preference of config.xml.
// RunIOS writes it to the manifest version and to every Info.plist under
// platforms/ios. RunAndroid writes it to the manifest version and increments
// android-versionCode. Both consume the preference.
//
// Runs are best effort: they never return an error and never stop the build.
// The returned Report records every outcome.
package newversion

import (
	"os"
	"path/filepath"
	"time"

	"github.com/alexandremahdhaoui/newversion/internal/logging"
	"github.com/alexandremahdhaoui/newversion/pkg/configxml"
	"github.com/alexandremahdhaoui/newversion/pkg/plist"
)

// Context is what the build harness hands to an orchestrator.
type Context struct {
	// ProjectRoot defaults to the current working directory.
	ProjectRoot string
}

// Root returns the project root, falling back to the working directory.
func (c Context) Root() string {
	if c.ProjectRoot != "" {
		return c.ProjectRoot
	}

	wd, err := os.Getwd()
	if err != nil {
		return "."
	}

	return wd
}

// Options tunes an orchestrator run. The zero value reproduces the default
// Cordova hook behavior.
type Options struct {
	// PreferenceName defaults to configxml.DefaultPreferenceName.
	PreferenceName string
	// ExcludeDirs defaults to plist.DefaultExcludeDirs.
	ExcludeDirs []string
	Guard       GuardPolicy
	DryRun      bool
	Log         *logging.Logger
	// PlistFS defaults to the local filesystem.
	PlistFS plist.FS
}

func (o Options) preferenceName() string {
	if o.PreferenceName == "" {
		return configxml.DefaultPreferenceName
	}
	return o.PreferenceName
}

func (o Options) logger(tag string) *logging.Logger {
	if o.Log == nil {
		return logging.NewDefault(tag)
	}
	return o.Log.WithTag(tag)
}

// IOSDir returns the iOS platform subtree of root.
func IOSDir(root string) string {
	return filepath.Join(root, "platforms", "ios")
}

// ResolveAndroidBase returns the Android sources directory of root:
// platforms/android/app/src/main for the cordova-android >= 7 layout,
// platforms/android otherwise.
func ResolveAndroidBase(root string) string {
	if _, err := os.Stat(filepath.Join(root, "platforms", "android", "app")); err == nil {
		return filepath.Join(root, "platforms", "android", "app", "src", "main")
	}
	return filepath.Join(root, "platforms", "android")
}

// RunIOS applies the staged version to config.xml and to every Info.plist.
// android-versionCode is left untouched.
func RunIOS(c Context, opts Options) *Report {
	return run(c, opts, PlatformIOS)
}

// RunAndroid applies the staged version to config.xml and increments
// android-versionCode.
func RunAndroid(c Context, opts Options) *Report {
	return run(c, opts, PlatformAndroid)
}

// RunAll consumes the staged version once and applies it for both platforms.
func RunAll(c Context, opts Options) *Report {
	return run(c, opts, PlatformAll)
}

func tagFor(p Platform) string {
	switch p {
	case PlatformIOS:
		return logging.TagIOS
	case PlatformAndroid:
		return logging.TagAndroid
	default:
		return logging.TagBase
	}
}

func run(c Context, opts Options, platform Platform) *Report {
	log := opts.logger(tagFor(platform))
	root := c.Root()

	report := newReport(platform, root, opts.DryRun)
	defer func() {
		report.Duration = time.Since(report.StartTime).Seconds()
	}()

	log.Infof("projectRoot: %s", root)

	if platform != PlatformIOS {
		report.AndroidBase = ResolveAndroidBase(root)
		log.Debugf("Android base path: %s", report.AndroidBase)
	}

	report.ManifestPath = filepath.Join(root, configxml.FileName)
	if _, err := os.Stat(report.ManifestPath); err != nil {
		report.Status = StatusMissingManifest
		log.Errorf(err, "config.xml not found at: %s", report.ManifestPath)
		return report
	}

	staged, err := configxml.ReadStagedVersion(report.ManifestPath, opts.PreferenceName)
	if err != nil {
		report.Status = StatusReadFailed
		report.Error = err.Error()
		log.Errorf(err, "Failed to read %s from config.xml", opts.preferenceName())
		return report
	}

	if staged == "" {
		report.Status = StatusNoStagedVersion
		log.Infof("%s is not set. Nothing to do.", opts.preferenceName())
		return report
	}

	report.StagedVersion = staged

	if !updateManifest(report, opts, platform, log) {
		return report
	}

	if platform != PlatformAndroid {
		patchPlists(report, opts, log)
	}

	return report
}

func updateManifest(report *Report, opts Options, platform Platform, log *logging.Logger) bool {
	fail := func(err error, msg string) bool {
		report.Status = StatusWriteFailed
		report.Error = err.Error()
		log.Errorf(err, "%s", msg)
		return false
	}

	m, err := configxml.Load(report.ManifestPath)
	if err != nil {
		return fail(err, "Failed to parse config.xml")
	}

	report.PreviousVersion = m.Version()

	guard := opts.Guard.Check(report.PreviousVersion, report.StagedVersion)
	if guard.Policy != GuardOff && guard.Policy != "" {
		report.Guard = &guard
	}
	if guard.Reason != "" {
		log.Warnf("Version guard: %s", guard.Reason)
	}
	if guard.Rejected {
		report.Status = StatusRejected
		log.Warnf("Staged version %s rejected, config.xml left untouched.", report.StagedVersion)
		return false
	}

	mut, err := m.Apply(report.StagedVersion, configxml.Options{
		PreferenceName: opts.PreferenceName,
		VersionCode:    platform != PlatformIOS,
	})
	if err != nil {
		return fail(err, "Failed to update config.xml")
	}

	if mut.PreferenceRemoved {
		log.Infof("Preference %q removed from config.xml.", opts.preferenceName())
	} else {
		log.Infof("Preference %q not found.", opts.preferenceName())
	}
	if mut.VersionCode != nil {
		log.Infof("android-versionCode updated to %d", mut.VersionCode.To)
	}

	if opts.DryRun {
		log.Infof("Dry run, config.xml not saved.")
	} else {
		if err := m.Save(report.ManifestPath); err != nil {
			return fail(err, "Failed to write config.xml")
		}
		log.Infof("config.xml updated to version %s.", report.StagedVersion)
	}

	report.Status = StatusUpdated
	report.Mutation = &mut

	return true
}

func patchPlists(report *Report, opts Options, log *logging.Logger) {
	iosRoot := IOSDir(report.ProjectRoot)
	if info, err := os.Stat(iosRoot); err != nil || !info.IsDir() {
		report.IOSSkipped = true
		log.Infof("platforms/ios not found. Skipping iOS update.")
		return
	}

	paths, err := plist.FindInfoPlists(iosRoot, opts.ExcludeDirs)
	if err != nil {
		report.Error = err.Error()
		log.Errorf(err, "Failed to list Info.plist files in %s", iosRoot)
		return
	}

	if len(paths) == 0 {
		log.Infof("No Info.plist found in platforms/ios.")
		return
	}

	patcher := plist.NewPatcher(log)
	patcher.DryRun = opts.DryRun
	if opts.PlistFS != nil {
		patcher.FS = opts.PlistFS
	}

	report.Files = patcher.PatchFiles(paths, report.StagedVersion)
}
