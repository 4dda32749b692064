// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package provision

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams(t *testing.T) Params {
	t.Helper()
	return Params{
		AMI:        "ami-0123456789",
		KeyName:    "kitchen-key",
		GitRepoURL: "https://example.com/skh/app.git",
		DB:         DBParams{Password: "s3cret"},
		EnvFile:    filepath.Join(t.TempDir(), ".env"),
		Wait:       time.Minute,
		RDSWait:    time.Minute,
	}
}

// fakeClone writes a tiny repository into dir.
func fakeClone(_ context.Context, _ string, dir string) error {
	files := map[string]string{
		"index.php":       "<?php echo 'hi';",
		"css/site.css":    "body{}",
		".git/HEAD":       "ref: refs/heads/main",
		".git/refs/x.txt": "x",
	}
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
			return err
		}
	}
	return nil
}

func newTestProvisioner(t *testing.T, f *fakeAWS, params Params) *Provisioner {
	t.Helper()
	// SetEnvKey updates the process env; restore it after the test.
	t.Setenv("POSTGRES_HOST", "")
	t.Setenv("POSTGRES_PORT", "")
	p := New(f.clients("us-west-2"), params)
	p.Clone = fakeClone
	return p
}

func TestUp_FullRun(t *testing.T) {
	f := newFakeAWS()
	params := testParams(t)
	p := newTestProvisioner(t, f, params)

	rep, err := p.Up(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StepNames, rep.CompletedSteps)
	assert.Equal(t, "us-west-2", rep.Region)
	assert.NotEmpty(t, rep.VpcID)
	assert.Equal(t, []string{"us-west-2a", "us-west-2b"}, rep.AvailabilityZones)
	assert.Len(t, rep.PublicSubnetIDs, 2)
	assert.Len(t, rep.PrivateSubnetIDs, 2)
	assert.Len(t, rep.RouteTableAssociationIDs, 4)
	assert.Len(t, rep.WebInstanceIDs, 2)
	assert.NotEmpty(t, rep.BastionInstanceID)
	assert.Equal(t, "http://skh-alb-123.us-west-2.elb.amazonaws.com", rep.ApplicationURL())
	assert.Equal(t, "skh_asg", rep.AutoScalingGroupName)
	assert.Equal(t, []string{"skh_scale_out_cpu_alarm", "skh_scale_in_cpu_alarm"}, rep.AlarmNames)
	assert.Equal(t, "skh-postgres", rep.DBInstanceID)
	assert.Equal(t, int32(5432), rep.DBPort)

	t.Run("subnet layout", func(t *testing.T) {
		require.Len(t, f.subnets, 4)
		var cidrs []string
		for _, s := range f.subnets {
			cidrs = append(cidrs, awsv2.ToString(s.CidrBlock))
		}
		assert.Equal(t, []string{PublicSubnet1, PrivateSubnet1, PublicSubnet2, PrivateSubnet2}, cidrs)
		assert.Equal(t, "us-west-2b", awsv2.ToString(f.subnets[3].AvailabilityZone))
		assert.Equal(t, 2, f.called("ModifySubnetAttribute"))
	})

	t.Run("security groups", func(t *testing.T) {
		require.Len(t, f.ingress, 3)
		assert.Len(t, f.ingress[0].IpPermissions, 3)
		assert.Len(t, f.ingress[1].IpPermissions, 2)
		db := f.ingress[2].IpPermissions[0]
		assert.Equal(t, int32(5432), awsv2.ToInt32(db.FromPort))
		assert.Equal(t, VPCCIDR, awsv2.ToString(db.IpRanges[0].CidrIp))
	})

	t.Run("bucket upload skips .git", func(t *testing.T) {
		assert.Equal(t, 2, rep.UploadedObjects)
		assert.Contains(t, f.objects, "myapp/index.php")
		assert.Contains(t, f.objects, "myapp/css/site.css")
		assert.NotNil(t, f.bucket.CreateBucketConfiguration, "non us-east-1 needs a location constraint")
	})

	t.Run("instances carry user data", func(t *testing.T) {
		require.Len(t, f.runInstances, 3)
		assert.Nil(t, f.runInstances[0].UserData, "bastion has no user data")
		raw, err := base64.StdEncoding.DecodeString(awsv2.ToString(f.runInstances[1].UserData))
		require.NoError(t, err)
		assert.Contains(t, string(raw), "aws s3 cp s3://"+rep.BucketName+"/myapp /var/www/html/myapp --recursive")
		assert.Equal(t, "kitchen-key", awsv2.ToString(f.runInstances[2].KeyName))
		assert.Equal(t, rep.WebInstanceIDs, f.registered)
	})

	t.Run("target group health check", func(t *testing.T) {
		tg := f.targetGroup
		assert.Equal(t, "skh-tg", awsv2.ToString(tg.Name))
		assert.Equal(t, HealthCheckPath, awsv2.ToString(tg.HealthCheckPath))
		assert.Equal(t, int32(30), awsv2.ToInt32(tg.HealthCheckIntervalSeconds))
		assert.Equal(t, int32(5), awsv2.ToInt32(tg.HealthyThresholdCount))
		assert.Equal(t, int32(2), awsv2.ToInt32(tg.UnhealthyThresholdCount))
	})

	t.Run("auto scaling", func(t *testing.T) {
		assert.Equal(t, int32(2), awsv2.ToInt32(f.asg.MinSize))
		assert.Equal(t, int32(4), awsv2.ToInt32(f.asg.MaxSize))
		assert.Equal(t, "ELB", awsv2.ToString(f.asg.HealthCheckType))
		assert.Equal(t, int32(120), awsv2.ToInt32(f.asg.HealthCheckGracePeriod))
		assert.Equal(t, []string{rep.TargetGroupARN}, f.asg.TargetGroupARNs)

		require.Len(t, f.policies, 2)
		assert.Equal(t, int32(1), awsv2.ToInt32(f.policies[0].ScalingAdjustment))
		assert.Equal(t, int32(-1), awsv2.ToInt32(f.policies[1].ScalingAdjustment))
		assert.Equal(t, int32(300), awsv2.ToInt32(f.policies[0].Cooldown))

		require.Len(t, f.alarms, 2)
		assert.Equal(t, 60.0, awsv2.ToFloat64(f.alarms[0].Threshold))
		assert.Equal(t, cwtypes.ComparisonOperatorGreaterThanThreshold, f.alarms[0].ComparisonOperator)
		assert.Equal(t, 30.0, awsv2.ToFloat64(f.alarms[1].Threshold))
		assert.Equal(t, []string{rep.ScaleInPolicyARN}, f.alarms[1].AlarmActions)
	})

	t.Run("rds settings and dotenv", func(t *testing.T) {
		db := f.dbInstance
		assert.Equal(t, "db.t3.micro", awsv2.ToString(db.DBInstanceClass))
		assert.True(t, awsv2.ToBool(db.MultiAZ))
		assert.True(t, awsv2.ToBool(db.StorageEncrypted))
		assert.False(t, awsv2.ToBool(db.PubliclyAccessible))
		assert.Equal(t, int32(7), awsv2.ToInt32(db.BackupRetentionPeriod))
		assert.Equal(t, []string{rep.DBSecurityGroupID}, db.VpcSecurityGroupIds)

		env, err := godotenv.Read(params.EnvFile)
		require.NoError(t, err)
		assert.Equal(t, "skh-postgres.abc123.us-west-2.rds.amazonaws.com", env["POSTGRES_HOST"])
		assert.Equal(t, "5432", env["POSTGRES_PORT"])
	})
}

func TestUp_StopsAtFirstFailure(t *testing.T) {
	f := newFakeAWS()
	f.fail["CreateNatGateway"] = errors.New("boom")
	p := newTestProvisioner(t, f, testParams(t))

	rep, err := p.Up(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "step nat")
	require.NotNil(t, rep)
	assert.Equal(t, []string{StepVPC, StepZones, StepSubnets, StepIGW}, rep.CompletedSteps)
	assert.NotEmpty(t, rep.ElasticIPAllocationID, "partial resources stay in the report")
	assert.Zero(t, f.called("CreateSecurityGroup"))
}

func TestUp_Skip(t *testing.T) {
	f := newFakeAWS()
	params := testParams(t)
	params.Skip = []string{StepRDS, StepScaling, StepASG, StepLaunchTemplate}
	params.GitRepoURL = ""
	p := newTestProvisioner(t, f, params)

	rep, err := p.Up(context.Background())
	require.NoError(t, err)

	assert.NotContains(t, rep.CompletedSteps, StepRDS)
	assert.Zero(t, f.called("CreateDBInstance"))
	assert.Zero(t, f.called("CreateAutoScalingGroup"))
	assert.Zero(t, f.called("PutObject"), "no repo means an empty bucket")
	assert.NotEmpty(t, rep.LoadBalancerDNS)
}

func TestUp_SkippedPrerequisite(t *testing.T) {
	f := newFakeAWS()
	params := testParams(t)
	params.Skip = []string{StepVPC}
	p := newTestProvisioner(t, f, params)

	_, err := p.Up(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingPrerequisite)
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr string
	}{
		{name: "ok", params: Params{AMI: "ami-1", DB: DBParams{Password: "x"}}},
		{name: "unknown step", params: Params{AMI: "ami-1", DB: DBParams{Password: "x"}, Skip: []string{"dns"}}, wantErr: `unknown step "dns"`},
		{name: "missing ami", params: Params{DB: DBParams{Password: "x"}}, wantErr: "AMI"},
		{name: "ami not needed", params: Params{DB: DBParams{Password: "x"}, Skip: []string{StepInstances, StepLaunchTemplate}}},
		{name: "missing db password", params: Params{AMI: "ami-1"}, wantErr: "database password"},
		{name: "db skipped", params: Params{AMI: "ami-1", Skip: []string{StepRDS}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestParams_WithDefaults(t *testing.T) {
	p := Params{}.WithDefaults()
	assert.Equal(t, DefaultPrefix, p.Prefix)
	assert.Equal(t, DefaultInstance, p.InstanceType)
	assert.Equal(t, DefaultDBClass, p.DB.InstanceClass)
	assert.Equal(t, DefaultRDSWait, p.RDSWait)

	p = Params{Prefix: "demo_", RDSWait: time.Minute}.WithDefaults()
	assert.Equal(t, "demo_", p.Prefix)
	assert.Equal(t, time.Minute, p.RDSWait)
}

func TestHyphenName(t *testing.T) {
	p := &Provisioner{Params: Params{Prefix: "Smart_Kitchen_Helper_Production_"}}
	n := p.hyphenName("db_subnet_group")
	assert.LessOrEqual(t, len(n), 32)
	assert.NotContains(t, n, "_")
	assert.Regexp(t, `^[a-z0-9-]+[a-z0-9]$`, n)
}

func TestUserData(t *testing.T) {
	raw, err := base64.StdEncoding.DecodeString(UserData("skh-app-1"))
	require.NoError(t, err)
	script := string(raw)
	assert.True(t, len(script) > 0 && script[:2] == "#!")
	assert.Contains(t, script, "s3://skh-app-1/myapp")
	assert.Contains(t, script, "/var/www/html/health")
}

func TestBucketName(t *testing.T) {
	a, b := BucketName(), BucketName()
	assert.Regexp(t, `^skh-app-[0-9a-f-]{36}$`, a)
	assert.NotEqual(t, a, b)
}

func TestReport_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultStateFile)
	rep := &Report{Region: "us-west-2", VpcID: "vpc-1", WebInstanceIDs: []string{"i-1", "i-2"}, DBPort: 5432}

	require.NoError(t, rep.Save(path))
	got, err := LoadReport(path)
	require.NoError(t, err)
	assert.Equal(t, rep, got)

	_, err = LoadReport(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
