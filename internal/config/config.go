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

// Package config assembles the new-version settings from the environment and
// the optional new-version.yaml project file. Command-line flags are applied
// on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexandremahdhaoui/newversion/pkg/configxml"
	"github.com/alexandremahdhaoui/newversion/pkg/flaterrors"
	"github.com/alexandremahdhaoui/newversion/pkg/newversion"
	"github.com/alexandremahdhaoui/newversion/pkg/plist"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// FileName is the optional project configuration file, looked up at the
// project root.
const FileName = "new-version.yaml"

var (
	errReadingEnvs   = errors.New("reading environment")
	errReadingConfig = errors.New("reading " + FileName)
	errInvalidConfig = errors.New("invalid " + FileName)
)

// ----------------------------------------------------- ENVS ------------------------------------------------------- //

// Envs holds the environment variables read by new-version.
type Envs struct {
	ProjectRoot string `env:"NEWVERSION_PROJECT_ROOT"`
	LogLevel    string `env:"NEWVERSION_LOG_LEVEL" envDefault:"info"`
	Guard       string `env:"NEWVERSION_GUARD"`
	DryRun      bool   `env:"NEWVERSION_DRY_RUN"`
	Strict      bool   `env:"NEWVERSION_STRICT"`

	// ReportPath is where the YAML run report is written, if set.
	ReportPath string `env:"NEWVERSION_REPORT_PATH"`

	// ReportS3Bucket enables publishing the run report to S3.
	ReportS3Bucket string `env:"NEWVERSION_REPORT_S3_BUCKET"`
	ReportS3Prefix string `env:"NEWVERSION_REPORT_S3_PREFIX" envDefault:"new-version"`
	// S3Endpoint targets an S3-compatible service (e.g. MinIO) instead of AWS.
	S3Endpoint        string `env:"NEWVERSION_S3_ENDPOINT"`
	S3Region          string `env:"NEWVERSION_S3_REGION"`
	S3AccessKeyID     string `env:"NEWVERSION_S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"NEWVERSION_S3_SECRET_ACCESS_KEY"`
}

// ReadEnvs parses the environment.
func ReadEnvs() (Envs, error) {
	envs := Envs{} //nolint:exhaustruct // unmarshal

	if err := env.Parse(&envs); err != nil {
		return Envs{}, flaterrors.Join(err, errReadingEnvs)
	}

	return envs, nil
}

// ----------------------------------------------------- FILE ------------------------------------------------------- //

// File is the content of new-version.yaml.
type File struct {
	// PreferenceName is the config.xml preference holding the staged version.
	PreferenceName string `yaml:"preferenceName,omitempty"`
	// ExcludeDirs are the directory names skipped while looking for Info.plist.
	ExcludeDirs []string `yaml:"excludeDirs,omitempty"`
	// Guard is the version guard policy: off, warn or enforce.
	Guard string `yaml:"guard,omitempty"`
}

// ReadFile reads new-version.yaml from root. A missing file yields an empty
// File.
func ReadFile(root string) (File, error) {
	path := filepath.Join(root, FileName)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return File{}, nil
	}
	if err != nil {
		return File{}, flaterrors.Join(err, errReadingConfig)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, flaterrors.Join(err, errReadingConfig)
	}

	if err := f.Validate(); err != nil {
		return File{}, err
	}

	return f, nil
}

// Validate checks the file content.
func (f File) Validate() error {
	var errs []error

	if strings.ContainsAny(f.PreferenceName, " \t\r\n") {
		errs = append(errs, fmt.Errorf("preferenceName %q must not contain whitespace", f.PreferenceName))
	}

	for _, d := range f.ExcludeDirs {
		if d == "" || strings.ContainsAny(d, `/\`) {
			errs = append(errs, fmt.Errorf("excludeDirs entry %q must be a plain directory name", d))
		}
	}

	if _, err := newversion.ParseGuardPolicy(f.Guard); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return flaterrors.Join(append(errs, errInvalidConfig)...)
	}

	return nil
}

// --------------------------------------------------- SETTINGS ----------------------------------------------------- //

// Settings is the merged configuration of one invocation.
type Settings struct {
	ProjectRoot    string
	LogLevel       string
	PreferenceName string
	ExcludeDirs    []string
	Guard          newversion.GuardPolicy
	DryRun         bool
	Strict         bool
	ReportPath     string

	ReportS3Bucket    string
	ReportS3Prefix    string
	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// Load merges envs and the project file found under the resolved project
// root. The environment wins over the file.
func Load(envs Envs, projectRoot string) (Settings, error) {
	if projectRoot == "" {
		projectRoot = envs.ProjectRoot
	}
	root := newversion.Context{ProjectRoot: projectRoot}.Root()

	f, err := ReadFile(root)
	if err != nil {
		return Settings{}, err
	}

	s := Settings{
		ProjectRoot:       root,
		LogLevel:          envs.LogLevel,
		PreferenceName:    f.PreferenceName,
		ExcludeDirs:       f.ExcludeDirs,
		DryRun:            envs.DryRun,
		Strict:            envs.Strict,
		ReportPath:        envs.ReportPath,
		ReportS3Bucket:    envs.ReportS3Bucket,
		ReportS3Prefix:    envs.ReportS3Prefix,
		S3Endpoint:        envs.S3Endpoint,
		S3Region:          envs.S3Region,
		S3AccessKeyID:     envs.S3AccessKeyID,
		S3SecretAccessKey: envs.S3SecretAccessKey,
	}

	if s.PreferenceName == "" {
		s.PreferenceName = configxml.DefaultPreferenceName
	}
	if s.ExcludeDirs == nil {
		s.ExcludeDirs = plist.DefaultExcludeDirs
	}

	guard := f.Guard
	if envs.Guard != "" {
		guard = envs.Guard
	}
	if s.Guard, err = newversion.ParseGuardPolicy(guard); err != nil {
		return Settings{}, flaterrors.Join(err, errReadingEnvs)
	}

	return s, nil
}

// Options converts s into orchestrator options.
func (s Settings) Options() newversion.Options {
	return newversion.Options{
		PreferenceName: s.PreferenceName,
		ExcludeDirs:    s.ExcludeDirs,
		Guard:          s.Guard,
		DryRun:         s.DryRun,
	}
}
