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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alexandremahdhaoui/newversion/internal/config"
	"github.com/alexandremahdhaoui/newversion/internal/logging"
	"github.com/alexandremahdhaoui/newversion/internal/reportsink"
	"github.com/alexandremahdhaoui/newversion/pkg/flaterrors"
	"github.com/alexandremahdhaoui/newversion/pkg/newversion"
	"github.com/alexandremahdhaoui/newversion/pkg/plist"
	"github.com/spf13/cobra"
)

var (
	errLoadingSettings = errors.New("loading settings")
	errStrictFailure   = errors.New("run reported failures and --strict is set")
)

var runners = map[newversion.Platform]func(newversion.Context, newversion.Options) *newversion.Report{
	newversion.PlatformIOS:     newversion.RunIOS,
	newversion.PlatformAndroid: newversion.RunAndroid,
	newversion.PlatformAll:     newversion.RunAll,
}

// flags are the command-line overrides. They win over the environment.
type flags struct {
	projectRoot string
	logLevel    string
	guard       string
	preference  string
	reportPath  string
	dryRun      bool
	strict      bool
}

const longHelp = `new-version reads the NEW_VERSION preference of config.xml and propagates it:

  ios      sets the config.xml version and, in every platforms/ios/**/Info.plist,
           CFBundleShortVersionString and a numeric CFBundleVersion (+1)
  android  sets the config.xml version and increments android-versionCode
  all      does both with a single read of the staged version

The NEW_VERSION preference is removed once consumed. Runs never fail the build
unless --strict is set.`

func runCLI(args []string) error {
	root := newRootCmd(os.Stderr)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:   Name,
		Short: "Propagate the staged NEW_VERSION of a Cordova project into its build manifests",
		Long:  longHelp + "\n\nEnvironment:\n" + config.EnvHelp(),

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.projectRoot, "project-root", "", "Cordova project root (default: $NEWVERSION_PROJECT_ROOT, then the working directory)")
	pf.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&f.guard, "guard", "", "version guard: off, warn or enforce")
	pf.StringVar(&f.preference, "preference", "", "config.xml preference holding the staged version")
	pf.StringVar(&f.reportPath, "report", "", "write the run report as YAML to this path")
	pf.BoolVar(&f.dryRun, "dry-run", false, "compute every change without writing any file")
	pf.BoolVar(&f.strict, "strict", false, "exit with a non-zero code when the run reports failures")

	for _, p := range []struct {
		platform newversion.Platform
		short    string
	}{
		{newversion.PlatformIOS, "Apply the staged version to config.xml and the iOS Info.plist files"},
		{newversion.PlatformAndroid, "Apply the staged version to config.xml and increment android-versionCode"},
		{newversion.PlatformAll, "Apply the staged version for both platforms"},
	} {
		platform := p.platform
		root.AddCommand(&cobra.Command{
			Use:   string(platform),
			Short: p.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runPlatform(cmd, f, platform, stderr)
			},
		})
	}

	return root
}

func runPlatform(cmd *cobra.Command, f *flags, platform newversion.Platform, stderr io.Writer) error {
	settings, err := loadSettings(cmd, f)
	if err != nil {
		return err
	}

	log := logging.New(stderr, logging.TagBase)
	if err := log.SetLevel(settings.LogLevel); err != nil {
		return flaterrors.Join(err, errLoadingSettings)
	}

	report := execute(cmd.Context(), platform, settings, log)

	if settings.Strict && report.Failed() {
		return errStrictFailure
	}

	return nil
}

func loadSettings(cmd *cobra.Command, f *flags) (config.Settings, error) {
	envs, err := config.ReadEnvs()
	if err != nil {
		return config.Settings{}, flaterrors.Join(err, errLoadingSettings)
	}

	settings, err := config.Load(envs, f.projectRoot)
	if err != nil {
		return config.Settings{}, flaterrors.Join(err, errLoadingSettings)
	}

	changed := cmd.Flags().Changed
	if changed("log-level") {
		settings.LogLevel = f.logLevel
	}
	if changed("guard") {
		if settings.Guard, err = newversion.ParseGuardPolicy(f.guard); err != nil {
			return config.Settings{}, flaterrors.Join(err, errLoadingSettings)
		}
	}
	if changed("preference") {
		settings.PreferenceName = f.preference
	}
	if changed("report") {
		settings.ReportPath = f.reportPath
	}
	if changed("dry-run") {
		settings.DryRun = f.dryRun
	}
	if changed("strict") {
		settings.Strict = f.strict
	}

	return settings, nil
}

// execute runs the orchestrator of platform and publishes its report.
// Publication failures are logged only.
func execute(ctx context.Context, platform newversion.Platform, settings config.Settings, log *logging.Logger) *newversion.Report {
	opts := settings.Options()
	opts.Log = log

	report := runners[platform](newversion.Context{ProjectRoot: settings.ProjectRoot}, opts)
	log.Infof("%s", summary(report))

	sinks, err := newSinks(ctx, settings)
	if err != nil {
		log.Errorf(err, "Report will not be published")
	}
	if err := sinks.Publish(ctx, report); err != nil {
		log.Errorf(err, "Failed to publish report %s", report.RunID)
	}

	return report
}

func newSinks(ctx context.Context, settings config.Settings) (reportsink.Multi, error) {
	var sinks reportsink.Multi

	if settings.ReportPath != "" {
		sinks = append(sinks, reportsink.FileSink{Path: settings.ReportPath})
	}

	if settings.ReportS3Bucket != "" {
		s3Sink, err := reportsink.NewS3Sink(ctx, reportsink.S3Config{
			Bucket:          settings.ReportS3Bucket,
			Prefix:          settings.ReportS3Prefix,
			Endpoint:        settings.S3Endpoint,
			Region:          settings.S3Region,
			AccessKeyID:     settings.S3AccessKeyID,
			SecretAccessKey: settings.S3SecretAccessKey,
		})
		if err != nil {
			return sinks, err
		}
		sinks = append(sinks, s3Sink)
	}

	return sinks, nil
}

func summary(r *newversion.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s run %s: config.xml %s", r.Platform, r.RunID, r.Status)
	if r.StagedVersion != "" {
		fmt.Fprintf(&b, ", version %s", r.StagedVersion)
	}
	if r.Mutation != nil && r.Mutation.VersionCode != nil {
		fmt.Fprintf(&b, ", android-versionCode %d", r.Mutation.VersionCode.To)
	}
	if len(r.Files) > 0 {
		fmt.Fprintf(&b, ", Info.plist: %d updated, %d unchanged, %d binary, %d failed",
			r.Count(plist.OutcomeUpdated),
			r.Count(plist.OutcomeUnchanged),
			r.Count(plist.OutcomeBinary),
			r.Count(plist.OutcomeFailed),
		)
	}
	if r.DryRun {
		b.WriteString(" (dry run)")
	}

	return b.String()
}
