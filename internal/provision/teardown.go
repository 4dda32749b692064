// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"context"
	"errors"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	elb "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/smartkitchen/skhctl/internal/log"
)

// teardown collects failures so Down can keep going.
type teardown struct {
	errs []error
}

func (t *teardown) do(what string, fn func() error) {
	if err := fn(); err != nil {
		log.WithError(err).Warnf("failed to delete %s", what)
		t.errs = append(t.errs, fmt.Errorf("delete %s: %w", what, err))
		return
	}
	log.Infof("Deleted %s", what)
}

// Down deletes everything recorded in rep, newest first. Every failure is
// logged and the teardown continues; the joined failures are returned.
func (p *Provisioner) Down(ctx context.Context, rep *Report) error {
	if rep == nil {
		return errors.New("no provisioning report to tear down")
	}
	t := &teardown{}
	ec := p.Clients.EC2

	if len(rep.AlarmNames) > 0 {
		t.do("scaling alarms", func() error {
			_, err := p.Clients.CloudWatch.DeleteAlarms(ctx, &cloudwatch.DeleteAlarmsInput{AlarmNames: rep.AlarmNames})
			return err
		})
	}

	if rep.AutoScalingGroupName != "" {
		t.do("auto scaling group "+rep.AutoScalingGroupName, func() error {
			if _, err := p.Clients.AutoScaling.DeleteAutoScalingGroup(ctx, &autoscaling.DeleteAutoScalingGroupInput{
				AutoScalingGroupName: awsv2.String(rep.AutoScalingGroupName),
				ForceDelete:          awsv2.Bool(true),
			}); err != nil {
				return err
			}
			return autoscaling.NewGroupNotExistsWaiter(p.Clients.AutoScaling).Wait(ctx, &autoscaling.DescribeAutoScalingGroupsInput{
				AutoScalingGroupNames: []string{rep.AutoScalingGroupName},
			}, p.Params.Wait)
		})
	}

	if rep.LaunchTemplateID != "" {
		t.do("launch template "+rep.LaunchTemplateID, func() error {
			_, err := ec.DeleteLaunchTemplate(ctx, &ec2.DeleteLaunchTemplateInput{LaunchTemplateId: awsv2.String(rep.LaunchTemplateID)})
			return err
		})
	}

	if rep.ListenerARN != "" {
		t.do("listener", func() error {
			_, err := p.Clients.ELB.DeleteListener(ctx, &elb.DeleteListenerInput{ListenerArn: awsv2.String(rep.ListenerARN)})
			return err
		})
	}
	if rep.LoadBalancerARN != "" {
		t.do("load balancer "+rep.LoadBalancerDNS, func() error {
			_, err := p.Clients.ELB.DeleteLoadBalancer(ctx, &elb.DeleteLoadBalancerInput{LoadBalancerArn: awsv2.String(rep.LoadBalancerARN)})
			return err
		})
	}
	if rep.TargetGroupARN != "" {
		t.do("target group", func() error {
			_, err := p.Clients.ELB.DeleteTargetGroup(ctx, &elb.DeleteTargetGroupInput{TargetGroupArn: awsv2.String(rep.TargetGroupARN)})
			return err
		})
	}

	var instances []string
	if rep.BastionInstanceID != "" {
		instances = append(instances, rep.BastionInstanceID)
	}
	instances = append(instances, rep.WebInstanceIDs...)
	if len(instances) > 0 {
		t.do(fmt.Sprintf("%d instances", len(instances)), func() error {
			if _, err := ec.TerminateInstances(ctx, &ec2.TerminateInstancesInput{InstanceIds: instances}); err != nil {
				return err
			}
			return ec2.NewInstanceTerminatedWaiter(ec).Wait(ctx, &ec2.DescribeInstancesInput{InstanceIds: instances}, p.Params.Wait)
		})
	}

	if rep.DBInstanceID != "" {
		t.do("db instance "+rep.DBInstanceID, func() error {
			if _, err := p.Clients.RDS.DeleteDBInstance(ctx, &rds.DeleteDBInstanceInput{
				DBInstanceIdentifier:   awsv2.String(rep.DBInstanceID),
				SkipFinalSnapshot:      awsv2.Bool(true),
				DeleteAutomatedBackups: awsv2.Bool(true),
			}); err != nil {
				return err
			}
			return rds.NewDBInstanceDeletedWaiter(p.Clients.RDS).Wait(ctx, &rds.DescribeDBInstancesInput{
				DBInstanceIdentifier: awsv2.String(rep.DBInstanceID),
			}, p.Params.RDSWait)
		})
	}
	if rep.DBSubnetGroupName != "" {
		t.do("db subnet group "+rep.DBSubnetGroupName, func() error {
			_, err := p.Clients.RDS.DeleteDBSubnetGroup(ctx, &rds.DeleteDBSubnetGroupInput{DBSubnetGroupName: awsv2.String(rep.DBSubnetGroupName)})
			return err
		})
	}

	if rep.NatGatewayID != "" {
		t.do("nat gateway "+rep.NatGatewayID, func() error {
			if _, err := ec.DeleteNatGateway(ctx, &ec2.DeleteNatGatewayInput{NatGatewayId: awsv2.String(rep.NatGatewayID)}); err != nil {
				return err
			}
			return ec2.NewNatGatewayDeletedWaiter(ec).Wait(ctx, &ec2.DescribeNatGatewaysInput{
				NatGatewayIds: []string{rep.NatGatewayID},
			}, p.Params.Wait)
		})
	}
	if rep.ElasticIPAllocationID != "" {
		t.do("elastic ip "+rep.ElasticIPAllocationID, func() error {
			_, err := ec.ReleaseAddress(ctx, &ec2.ReleaseAddressInput{AllocationId: awsv2.String(rep.ElasticIPAllocationID)})
			return err
		})
	}

	for _, assoc := range rep.RouteTableAssociationIDs {
		t.do("route table association "+assoc, func() error {
			_, err := ec.DisassociateRouteTable(ctx, &ec2.DisassociateRouteTableInput{AssociationId: awsv2.String(assoc)})
			return err
		})
	}
	for _, rt := range []string{rep.PrivateRouteTableID, rep.PublicRouteTableID} {
		if rt == "" {
			continue
		}
		t.do("route table "+rt, func() error {
			_, err := ec.DeleteRouteTable(ctx, &ec2.DeleteRouteTableInput{RouteTableId: awsv2.String(rt)})
			return err
		})
	}

	if rep.InternetGatewayID != "" {
		t.do("internet gateway "+rep.InternetGatewayID, func() error {
			if rep.VpcID != "" {
				if _, err := ec.DetachInternetGateway(ctx, &ec2.DetachInternetGatewayInput{
					InternetGatewayId: awsv2.String(rep.InternetGatewayID),
					VpcId:             awsv2.String(rep.VpcID),
				}); err != nil {
					return err
				}
			}
			_, err := ec.DeleteInternetGateway(ctx, &ec2.DeleteInternetGatewayInput{InternetGatewayId: awsv2.String(rep.InternetGatewayID)})
			return err
		})
	}

	for _, subnet := range append(append([]string{}, rep.PrivateSubnetIDs...), rep.PublicSubnetIDs...) {
		t.do("subnet "+subnet, func() error {
			_, err := ec.DeleteSubnet(ctx, &ec2.DeleteSubnetInput{SubnetId: awsv2.String(subnet)})
			return err
		})
	}

	for _, sg := range []string{rep.DBSecurityGroupID, rep.PrivateSecurityGroupID, rep.PublicSecurityGroupID} {
		if sg == "" {
			continue
		}
		t.do("security group "+sg, func() error {
			_, err := ec.DeleteSecurityGroup(ctx, &ec2.DeleteSecurityGroupInput{GroupId: awsv2.String(sg)})
			return err
		})
	}

	if rep.VpcID != "" {
		t.do("vpc "+rep.VpcID, func() error {
			_, err := ec.DeleteVpc(ctx, &ec2.DeleteVpcInput{VpcId: awsv2.String(rep.VpcID)})
			return err
		})
	}

	if rep.BucketName != "" {
		t.do("bucket "+rep.BucketName, func() error {
			if err := p.emptyBucket(ctx, rep.BucketName); err != nil {
				return err
			}
			_, err := p.Clients.S3.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: awsv2.String(rep.BucketName)})
			return err
		})
	}

	return errors.Join(t.errs...)
}
