// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package aws

import (
	"context"
	"testing"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOptions verifies each Option populates the options struct and that later
// options override earlier ones.
func TestOptions(t *testing.T) {
	var opts options
	WithProfile("kitchen")(&opts)
	WithRegion("us-east-1")(&opts)
	WithRegion("eu-west-1")(&opts)
	WithRetryer(func() awsv2.Retryer { return retry.NewStandard() })(&opts)
	WithStaticCredentials("AKIAEXAMPLE", "secret")(&opts)

	assert.Equal(t, "kitchen", opts.profile)
	assert.Equal(t, "eu-west-1", opts.region)
	require.NotNil(t, opts.retryer)
	assert.NotNil(t, opts.retryer())
	assert.Equal(t, "AKIAEXAMPLE", opts.keyID)
	assert.Equal(t, "secret", opts.secretKey)
}

func TestLoadAWSConfig_WithRegion(t *testing.T) {
	cfg, err := LoadAWSConfig(context.Background(), WithRegion("us-west-2"))

	assert.NoError(t, err)
	assert.Equal(t, "us-west-2", cfg.Region)
}

// TestLoadAWSConfig_StaticCredentials verifies the pinned key pair is what the
// credential provider hands out.
func TestLoadAWSConfig_StaticCredentials(t *testing.T) {
	ctx := context.Background()
	cfg, err := LoadAWSConfig(ctx,
		WithRegion("us-east-1"),
		WithStaticCredentials("AKIAEXAMPLE", "secret"),
	)
	require.NoError(t, err)

	creds, err := cfg.Credentials.Retrieve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AKIAEXAMPLE", creds.AccessKeyID)
	assert.Equal(t, "secret", creds.SecretAccessKey)
}

// TestLoadAWSConfig_HalfCredentials verifies that a key without a secret is
// ignored rather than producing an unusable provider.
func TestLoadAWSConfig_HalfCredentials(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIAFROMENV")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "envsecret")

	ctx := context.Background()
	cfg, err := LoadAWSConfig(ctx, WithRegion("us-east-1"), WithStaticCredentials("AKIAEXAMPLE", ""))
	require.NoError(t, err)

	creds, err := cfg.Credentials.Retrieve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AKIAFROMENV", creds.AccessKeyID)
}

func TestNewClients(t *testing.T) {
	cfg, err := LoadAWSConfig(context.Background(), WithRegion("ap-northeast-1"))
	require.NoError(t, err)

	c := NewClients(cfg)

	assert.Equal(t, "ap-northeast-1", c.Region)
	assert.IsType(t, &ec2.Client{}, c.EC2)
	assert.IsType(t, &s3v2.Client{}, c.S3)
	assert.NotNil(t, c.ELB)
	assert.NotNil(t, c.AutoScaling)
	assert.NotNil(t, c.CloudWatch)
	assert.NotNil(t, c.RDS)
}
