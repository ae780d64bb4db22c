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

// Package reportsink publishes new-version run reports.
package reportsink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexandremahdhaoui/newversion/pkg/flaterrors"
	"github.com/alexandremahdhaoui/newversion/pkg/newversion"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"sigs.k8s.io/yaml"
)

var (
	errPublishingReport = errors.New("publishing report")
	errCreatingS3Sink   = errors.New("creating s3 report sink")
)

// Sink publishes a report.
type Sink interface {
	Publish(ctx context.Context, report *newversion.Report) error
}

// Marshal renders report as YAML.
func Marshal(report *newversion.Report) ([]byte, error) {
	return yaml.Marshal(report)
}

// ----------------------------------------------------- FILE ------------------------------------------------------- //

// FileSink writes the report as YAML to Path, creating parent directories.
type FileSink struct {
	Path string
}

// Publish implements Sink.
func (s FileSink) Publish(_ context.Context, report *newversion.Report) error {
	data, err := Marshal(report)
	if err != nil {
		return flaterrors.Join(err, errPublishingReport)
	}

	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return flaterrors.Join(err, errPublishingReport)
		}
	}

	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return flaterrors.Join(err, errPublishingReport)
	}

	return nil
}

// ------------------------------------------------------ S3 -------------------------------------------------------- //

// ObjectPutter is the subset of the S3 client used by S3Sink.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config configures NewS3Sink.
type S3Config struct {
	Bucket string
	Prefix string
	// Endpoint targets an S3-compatible service. Path-style addressing is
	// used when it is set.
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// S3Sink uploads the report to <Prefix>/<platform>/<runID>.yaml in Bucket.
type S3Sink struct {
	Client ObjectPutter
	Bucket string
	Prefix string
}

// NewS3Sink creates an S3Sink from cfg, using the default AWS credential chain
// unless static credentials are provided.
func NewS3Sink(ctx context.Context, cfg S3Config) (*S3Sink, error) {
	if cfg.Bucket == "" {
		return nil, flaterrors.Join(errors.New("bucket name is required"), errCreatingS3Sink)
	}

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.Endpoint != "" {
		if !strings.HasPrefix(cfg.Endpoint, "http://") && !strings.HasPrefix(cfg.Endpoint, "https://") {
			return nil, flaterrors.Join(fmt.Errorf("endpoint %q must start with http:// or https://", cfg.Endpoint), errCreatingS3Sink)
		}
		loadOpts = append(loadOpts, config.WithBaseEndpoint(cfg.Endpoint))
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, flaterrors.Join(err, errCreatingS3Sink)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.Endpoint != ""
	})

	return &S3Sink{Client: client, Bucket: cfg.Bucket, Prefix: cfg.Prefix}, nil
}

// Key returns the object key of report.
func (s *S3Sink) Key(report *newversion.Report) string {
	return path.Join(s.Prefix, string(report.Platform), report.RunID+".yaml")
}

// Publish implements Sink.
func (s *S3Sink) Publish(ctx context.Context, report *newversion.Report) error {
	data, err := Marshal(report)
	if err != nil {
		return flaterrors.Join(err, errPublishingReport)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	_, err = s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(s.Key(report)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/yaml"),
	})
	if err != nil {
		return flaterrors.Join(fmt.Errorf("putting s3://%s/%s: %w", s.Bucket, s.Key(report), err), errPublishingReport)
	}

	return nil
}

// ----------------------------------------------------- MULTI ------------------------------------------------------ //

// Multi publishes to every sink and returns all errors.
type Multi []Sink

// Publish implements Sink.
func (m Multi) Publish(ctx context.Context, report *newversion.Report) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return flaterrors.Join(errs...)
}
