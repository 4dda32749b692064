// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"context"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	astypes "github.com/aws/aws-sdk-go-v2/service/autoscaling/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/smartkitchen/skhctl/internal/log"
)

// scalingRule pairs a simple scaling policy with the alarm that fires it.
type scalingRule struct {
	Name       string
	Adjustment int32
	Threshold  float64
	Comparison cwtypes.ComparisonOperator
}

var scalingRules = []scalingRule{
	{Name: "scale_out", Adjustment: 1, Threshold: ScaleOutCPU, Comparison: cwtypes.ComparisonOperatorGreaterThanThreshold},
	{Name: "scale_in", Adjustment: -1, Threshold: ScaleInCPU, Comparison: cwtypes.ComparisonOperatorLessThanThreshold},
}

func (p *Provisioner) createLaunchTemplate(ctx context.Context, rep *Report) error {
	if err := need("private security group and user data", rep.PrivateSecurityGroupID, p.userData); err != nil {
		return err
	}

	data := &ec2types.RequestLaunchTemplateData{
		ImageId:          awsv2.String(p.Params.AMI),
		InstanceType:     ec2types.InstanceType(p.Params.InstanceType),
		SecurityGroupIds: []string{rep.PrivateSecurityGroupID},
		UserData:         awsv2.String(p.userData),
	}
	if p.Params.KeyName != "" {
		data.KeyName = awsv2.String(p.Params.KeyName)
	}

	out, err := p.Clients.EC2.CreateLaunchTemplate(ctx, &ec2.CreateLaunchTemplateInput{
		LaunchTemplateName: awsv2.String(p.name("launch_template")),
		VersionDescription: awsv2.String("web tier"),
		LaunchTemplateData: data,
		TagSpecifications:  p.ec2Tags(ec2types.ResourceTypeLaunchTemplate, "launch_template"),
	})
	if err != nil {
		return FriendlyAWS(err, p.errCtx("create launch template", "launch template"))
	}
	rep.LaunchTemplateID = awsv2.ToString(out.LaunchTemplate.LaunchTemplateId)
	log.Infof("Launch template created: %s", rep.LaunchTemplateID)
	return nil
}

func (p *Provisioner) createAutoScalingGroup(ctx context.Context, rep *Report) error {
	if err := need("launch template", rep.LaunchTemplateID); err != nil {
		return err
	}
	if len(rep.PrivateSubnetIDs) == 0 {
		return need("private subnets", "")
	}

	name := p.name("asg")
	in := &autoscaling.CreateAutoScalingGroupInput{
		AutoScalingGroupName: awsv2.String(name),
		LaunchTemplate: &astypes.LaunchTemplateSpecification{
			LaunchTemplateId: awsv2.String(rep.LaunchTemplateID),
			Version:          awsv2.String("$Latest"),
		},
		MinSize:                awsv2.Int32(ASGMin),
		MaxSize:                awsv2.Int32(ASGMax),
		DesiredCapacity:        awsv2.Int32(ASGDesired),
		VPCZoneIdentifier:      awsv2.String(strings.Join(rep.PrivateSubnetIDs, ",")),
		HealthCheckType:        awsv2.String("ELB"),
		HealthCheckGracePeriod: awsv2.Int32(ASGGracePeriod),
		Tags: []astypes.Tag{
			{Key: awsv2.String("Name"), Value: awsv2.String(p.name("asg_instance")), PropagateAtLaunch: awsv2.Bool(true)},
			{Key: awsv2.String(ManagedByTag), Value: awsv2.String("skhctl"), PropagateAtLaunch: awsv2.Bool(true)},
		},
	}
	if rep.TargetGroupARN != "" {
		in.TargetGroupARNs = []string{rep.TargetGroupARN}
	}

	if _, err := p.Clients.AutoScaling.CreateAutoScalingGroup(ctx, in); err != nil {
		return FriendlyAWS(err, p.errCtx("create auto scaling group", "auto scaling group"))
	}
	rep.AutoScalingGroupName = name
	log.Infof("Auto Scaling group created: %s", name)
	return nil
}

// createScalingPolicies adds one simple scaling policy per direction and the
// CPU alarm that triggers it.
func (p *Provisioner) createScalingPolicies(ctx context.Context, rep *Report) error {
	if err := need("auto scaling group", rep.AutoScalingGroupName); err != nil {
		return err
	}

	for _, r := range scalingRules {
		out, err := p.Clients.AutoScaling.PutScalingPolicy(ctx, &autoscaling.PutScalingPolicyInput{
			AutoScalingGroupName: awsv2.String(rep.AutoScalingGroupName),
			PolicyName:           awsv2.String(p.name(r.Name)),
			PolicyType:           awsv2.String("SimpleScaling"),
			AdjustmentType:       awsv2.String("ChangeInCapacity"),
			ScalingAdjustment:    awsv2.Int32(r.Adjustment),
			Cooldown:             awsv2.Int32(ScalingCooldown),
		})
		if err != nil {
			return FriendlyAWS(err, p.errCtx("put scaling policy "+r.Name, "scaling policy"))
		}
		arn := awsv2.ToString(out.PolicyARN)
		if r.Adjustment > 0 {
			rep.ScaleOutPolicyARN = arn
		} else {
			rep.ScaleInPolicyARN = arn
		}

		alarm := p.name(r.Name + "_cpu_alarm")
		if _, err := p.Clients.CloudWatch.PutMetricAlarm(ctx, &cloudwatch.PutMetricAlarmInput{
			AlarmName:          awsv2.String(alarm),
			Namespace:          awsv2.String("AWS/EC2"),
			MetricName:         awsv2.String("CPUUtilization"),
			Statistic:          cwtypes.StatisticAverage,
			Period:             awsv2.Int32(AlarmPeriod),
			EvaluationPeriods:  awsv2.Int32(AlarmEvalPeriods),
			Threshold:          awsv2.Float64(r.Threshold),
			ComparisonOperator: r.Comparison,
			Dimensions: []cwtypes.Dimension{{
				Name:  awsv2.String("AutoScalingGroupName"),
				Value: awsv2.String(rep.AutoScalingGroupName),
			}},
			AlarmActions: []string{arn},
		}); err != nil {
			return FriendlyAWS(err, p.errCtx("put metric alarm "+alarm, "alarm"))
		}
		rep.AlarmNames = append(rep.AlarmNames, alarm)
		log.Infof("Scaling policy %s created with alarm %s", p.name(r.Name), alarm)
	}
	return nil
}
