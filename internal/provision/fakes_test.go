// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package provision

import (
	"context"
	"fmt"
	"io"
	"sync"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	astypes "github.com/aws/aws-sdk-go-v2/service/autoscaling/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	elb "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbtypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	awsx "github.com/smartkitchen/skhctl/internal/aws"
)

// fakeAWS implements every narrow client interface in memory. Calls are
// recorded in order; fail makes the named operation return an error.
type fakeAWS struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
	seq   int

	subnets        []*ec2.CreateSubnetInput
	ingress        []*ec2.AuthorizeSecurityGroupIngressInput
	runInstances   []*ec2.RunInstancesInput
	launchTemplate *ec2.CreateLaunchTemplateInput
	targetGroup    *elb.CreateTargetGroupInput
	registered     []string
	asg            *autoscaling.CreateAutoScalingGroupInput
	policies       []*autoscaling.PutScalingPolicyInput
	alarms         []*cloudwatch.PutMetricAlarmInput
	dbInstance     *rds.CreateDBInstanceInput
	bucket         *s3.CreateBucketInput
	objects        map[string]string

	terminated bool
	natDeleted bool
	dbDeleted  bool
}

func newFakeAWS() *fakeAWS {
	return &fakeAWS{fail: map[string]error{}, objects: map[string]string{}}
}

func (f *fakeAWS) clients(region string) *awsx.Clients {
	return &awsx.Clients{EC2: f, ELB: f, AutoScaling: f, CloudWatch: f, RDS: f, S3: f, Region: region}
}

func (f *fakeAWS) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	return f.fail[op]
}

func (f *fakeAWS) id(prefix string) *string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	return awsv2.String(fmt.Sprintf("%s-%04d", prefix, f.seq))
}

func (f *fakeAWS) called(op string) int {
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

// EC2

func (f *fakeAWS) CreateVpc(_ context.Context, _ *ec2.CreateVpcInput, _ ...func(*ec2.Options)) (*ec2.CreateVpcOutput, error) {
	if err := f.record("CreateVpc"); err != nil {
		return nil, err
	}
	return &ec2.CreateVpcOutput{Vpc: &ec2types.Vpc{VpcId: f.id("vpc")}}, nil
}

func (f *fakeAWS) ModifyVpcAttribute(_ context.Context, _ *ec2.ModifyVpcAttributeInput, _ ...func(*ec2.Options)) (*ec2.ModifyVpcAttributeOutput, error) {
	return &ec2.ModifyVpcAttributeOutput{}, f.record("ModifyVpcAttribute")
}

func (f *fakeAWS) DeleteVpc(_ context.Context, _ *ec2.DeleteVpcInput, _ ...func(*ec2.Options)) (*ec2.DeleteVpcOutput, error) {
	return &ec2.DeleteVpcOutput{}, f.record("DeleteVpc")
}

func (f *fakeAWS) DescribeAvailabilityZones(_ context.Context, _ *ec2.DescribeAvailabilityZonesInput, _ ...func(*ec2.Options)) (*ec2.DescribeAvailabilityZonesOutput, error) {
	if err := f.record("DescribeAvailabilityZones"); err != nil {
		return nil, err
	}
	return &ec2.DescribeAvailabilityZonesOutput{AvailabilityZones: []ec2types.AvailabilityZone{
		{ZoneName: awsv2.String("us-west-2a"), State: ec2types.AvailabilityZoneStateAvailable},
		{ZoneName: awsv2.String("us-west-2b"), State: ec2types.AvailabilityZoneStateAvailable},
		{ZoneName: awsv2.String("us-west-2c"), State: ec2types.AvailabilityZoneStateAvailable},
	}}, nil
}

func (f *fakeAWS) CreateSubnet(_ context.Context, in *ec2.CreateSubnetInput, _ ...func(*ec2.Options)) (*ec2.CreateSubnetOutput, error) {
	if err := f.record("CreateSubnet"); err != nil {
		return nil, err
	}
	f.subnets = append(f.subnets, in)
	return &ec2.CreateSubnetOutput{Subnet: &ec2types.Subnet{SubnetId: f.id("subnet")}}, nil
}

func (f *fakeAWS) ModifySubnetAttribute(_ context.Context, _ *ec2.ModifySubnetAttributeInput, _ ...func(*ec2.Options)) (*ec2.ModifySubnetAttributeOutput, error) {
	return &ec2.ModifySubnetAttributeOutput{}, f.record("ModifySubnetAttribute")
}

func (f *fakeAWS) DeleteSubnet(_ context.Context, _ *ec2.DeleteSubnetInput, _ ...func(*ec2.Options)) (*ec2.DeleteSubnetOutput, error) {
	return &ec2.DeleteSubnetOutput{}, f.record("DeleteSubnet")
}

func (f *fakeAWS) CreateInternetGateway(_ context.Context, _ *ec2.CreateInternetGatewayInput, _ ...func(*ec2.Options)) (*ec2.CreateInternetGatewayOutput, error) {
	if err := f.record("CreateInternetGateway"); err != nil {
		return nil, err
	}
	return &ec2.CreateInternetGatewayOutput{InternetGateway: &ec2types.InternetGateway{InternetGatewayId: f.id("igw")}}, nil
}

func (f *fakeAWS) AttachInternetGateway(_ context.Context, _ *ec2.AttachInternetGatewayInput, _ ...func(*ec2.Options)) (*ec2.AttachInternetGatewayOutput, error) {
	return &ec2.AttachInternetGatewayOutput{}, f.record("AttachInternetGateway")
}

func (f *fakeAWS) DetachInternetGateway(_ context.Context, _ *ec2.DetachInternetGatewayInput, _ ...func(*ec2.Options)) (*ec2.DetachInternetGatewayOutput, error) {
	return &ec2.DetachInternetGatewayOutput{}, f.record("DetachInternetGateway")
}

func (f *fakeAWS) DeleteInternetGateway(_ context.Context, _ *ec2.DeleteInternetGatewayInput, _ ...func(*ec2.Options)) (*ec2.DeleteInternetGatewayOutput, error) {
	return &ec2.DeleteInternetGatewayOutput{}, f.record("DeleteInternetGateway")
}

func (f *fakeAWS) CreateRouteTable(_ context.Context, _ *ec2.CreateRouteTableInput, _ ...func(*ec2.Options)) (*ec2.CreateRouteTableOutput, error) {
	if err := f.record("CreateRouteTable"); err != nil {
		return nil, err
	}
	return &ec2.CreateRouteTableOutput{RouteTable: &ec2types.RouteTable{RouteTableId: f.id("rtb")}}, nil
}

func (f *fakeAWS) CreateRoute(_ context.Context, _ *ec2.CreateRouteInput, _ ...func(*ec2.Options)) (*ec2.CreateRouteOutput, error) {
	return &ec2.CreateRouteOutput{}, f.record("CreateRoute")
}

func (f *fakeAWS) AssociateRouteTable(_ context.Context, _ *ec2.AssociateRouteTableInput, _ ...func(*ec2.Options)) (*ec2.AssociateRouteTableOutput, error) {
	if err := f.record("AssociateRouteTable"); err != nil {
		return nil, err
	}
	return &ec2.AssociateRouteTableOutput{AssociationId: f.id("rtbassoc")}, nil
}

func (f *fakeAWS) DisassociateRouteTable(_ context.Context, _ *ec2.DisassociateRouteTableInput, _ ...func(*ec2.Options)) (*ec2.DisassociateRouteTableOutput, error) {
	return &ec2.DisassociateRouteTableOutput{}, f.record("DisassociateRouteTable")
}

func (f *fakeAWS) DeleteRouteTable(_ context.Context, _ *ec2.DeleteRouteTableInput, _ ...func(*ec2.Options)) (*ec2.DeleteRouteTableOutput, error) {
	return &ec2.DeleteRouteTableOutput{}, f.record("DeleteRouteTable")
}

func (f *fakeAWS) AllocateAddress(_ context.Context, _ *ec2.AllocateAddressInput, _ ...func(*ec2.Options)) (*ec2.AllocateAddressOutput, error) {
	if err := f.record("AllocateAddress"); err != nil {
		return nil, err
	}
	return &ec2.AllocateAddressOutput{AllocationId: f.id("eipalloc")}, nil
}

func (f *fakeAWS) ReleaseAddress(_ context.Context, _ *ec2.ReleaseAddressInput, _ ...func(*ec2.Options)) (*ec2.ReleaseAddressOutput, error) {
	return &ec2.ReleaseAddressOutput{}, f.record("ReleaseAddress")
}

func (f *fakeAWS) CreateNatGateway(_ context.Context, _ *ec2.CreateNatGatewayInput, _ ...func(*ec2.Options)) (*ec2.CreateNatGatewayOutput, error) {
	if err := f.record("CreateNatGateway"); err != nil {
		return nil, err
	}
	return &ec2.CreateNatGatewayOutput{NatGateway: &ec2types.NatGateway{NatGatewayId: f.id("nat")}}, nil
}

func (f *fakeAWS) DescribeNatGateways(_ context.Context, in *ec2.DescribeNatGatewaysInput, _ ...func(*ec2.Options)) (*ec2.DescribeNatGatewaysOutput, error) {
	if err := f.record("DescribeNatGateways"); err != nil {
		return nil, err
	}
	state := ec2types.NatGatewayStateAvailable
	if f.natDeleted {
		state = ec2types.NatGatewayStateDeleted
	}
	out := &ec2.DescribeNatGatewaysOutput{}
	for _, id := range in.NatGatewayIds {
		out.NatGateways = append(out.NatGateways, ec2types.NatGateway{NatGatewayId: awsv2.String(id), State: state})
	}
	return out, nil
}

func (f *fakeAWS) DeleteNatGateway(_ context.Context, _ *ec2.DeleteNatGatewayInput, _ ...func(*ec2.Options)) (*ec2.DeleteNatGatewayOutput, error) {
	if err := f.record("DeleteNatGateway"); err != nil {
		return nil, err
	}
	f.natDeleted = true
	return &ec2.DeleteNatGatewayOutput{}, nil
}

func (f *fakeAWS) CreateSecurityGroup(_ context.Context, _ *ec2.CreateSecurityGroupInput, _ ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error) {
	if err := f.record("CreateSecurityGroup"); err != nil {
		return nil, err
	}
	return &ec2.CreateSecurityGroupOutput{GroupId: f.id("sg")}, nil
}

func (f *fakeAWS) AuthorizeSecurityGroupIngress(_ context.Context, in *ec2.AuthorizeSecurityGroupIngressInput, _ ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error) {
	f.ingress = append(f.ingress, in)
	return &ec2.AuthorizeSecurityGroupIngressOutput{}, f.record("AuthorizeSecurityGroupIngress")
}

func (f *fakeAWS) DeleteSecurityGroup(_ context.Context, _ *ec2.DeleteSecurityGroupInput, _ ...func(*ec2.Options)) (*ec2.DeleteSecurityGroupOutput, error) {
	return &ec2.DeleteSecurityGroupOutput{}, f.record("DeleteSecurityGroup")
}

func (f *fakeAWS) RunInstances(_ context.Context, in *ec2.RunInstancesInput, _ ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error) {
	if err := f.record("RunInstances"); err != nil {
		return nil, err
	}
	f.runInstances = append(f.runInstances, in)
	return &ec2.RunInstancesOutput{Instances: []ec2types.Instance{{InstanceId: f.id("i")}}}, nil
}

func (f *fakeAWS) DescribeInstances(_ context.Context, in *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	if err := f.record("DescribeInstances"); err != nil {
		return nil, err
	}
	state := ec2types.InstanceStateNameRunning
	if f.terminated {
		state = ec2types.InstanceStateNameTerminated
	}
	var instances []ec2types.Instance
	for _, id := range in.InstanceIds {
		instances = append(instances, ec2types.Instance{
			InstanceId: awsv2.String(id),
			State:      &ec2types.InstanceState{Name: state},
		})
	}
	return &ec2.DescribeInstancesOutput{Reservations: []ec2types.Reservation{{Instances: instances}}}, nil
}

func (f *fakeAWS) TerminateInstances(_ context.Context, _ *ec2.TerminateInstancesInput, _ ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error) {
	if err := f.record("TerminateInstances"); err != nil {
		return nil, err
	}
	f.terminated = true
	return &ec2.TerminateInstancesOutput{}, nil
}

func (f *fakeAWS) CreateLaunchTemplate(_ context.Context, in *ec2.CreateLaunchTemplateInput, _ ...func(*ec2.Options)) (*ec2.CreateLaunchTemplateOutput, error) {
	if err := f.record("CreateLaunchTemplate"); err != nil {
		return nil, err
	}
	f.launchTemplate = in
	return &ec2.CreateLaunchTemplateOutput{LaunchTemplate: &ec2types.LaunchTemplate{LaunchTemplateId: f.id("lt")}}, nil
}

func (f *fakeAWS) DeleteLaunchTemplate(_ context.Context, _ *ec2.DeleteLaunchTemplateInput, _ ...func(*ec2.Options)) (*ec2.DeleteLaunchTemplateOutput, error) {
	return &ec2.DeleteLaunchTemplateOutput{}, f.record("DeleteLaunchTemplate")
}

// ELB

func (f *fakeAWS) CreateTargetGroup(_ context.Context, in *elb.CreateTargetGroupInput, _ ...func(*elb.Options)) (*elb.CreateTargetGroupOutput, error) {
	if err := f.record("CreateTargetGroup"); err != nil {
		return nil, err
	}
	f.targetGroup = in
	return &elb.CreateTargetGroupOutput{TargetGroups: []elbtypes.TargetGroup{{TargetGroupArn: f.id("arn:tg")}}}, nil
}

func (f *fakeAWS) RegisterTargets(_ context.Context, in *elb.RegisterTargetsInput, _ ...func(*elb.Options)) (*elb.RegisterTargetsOutput, error) {
	for _, t := range in.Targets {
		f.registered = append(f.registered, awsv2.ToString(t.Id))
	}
	return &elb.RegisterTargetsOutput{}, f.record("RegisterTargets")
}

func (f *fakeAWS) DeleteTargetGroup(_ context.Context, _ *elb.DeleteTargetGroupInput, _ ...func(*elb.Options)) (*elb.DeleteTargetGroupOutput, error) {
	return &elb.DeleteTargetGroupOutput{}, f.record("DeleteTargetGroup")
}

func (f *fakeAWS) CreateLoadBalancer(_ context.Context, _ *elb.CreateLoadBalancerInput, _ ...func(*elb.Options)) (*elb.CreateLoadBalancerOutput, error) {
	if err := f.record("CreateLoadBalancer"); err != nil {
		return nil, err
	}
	return &elb.CreateLoadBalancerOutput{LoadBalancers: []elbtypes.LoadBalancer{{
		LoadBalancerArn: f.id("arn:alb"),
		DNSName:         awsv2.String("skh-alb-123.us-west-2.elb.amazonaws.com"),
	}}}, nil
}

func (f *fakeAWS) DeleteLoadBalancer(_ context.Context, _ *elb.DeleteLoadBalancerInput, _ ...func(*elb.Options)) (*elb.DeleteLoadBalancerOutput, error) {
	return &elb.DeleteLoadBalancerOutput{}, f.record("DeleteLoadBalancer")
}

func (f *fakeAWS) CreateListener(_ context.Context, _ *elb.CreateListenerInput, _ ...func(*elb.Options)) (*elb.CreateListenerOutput, error) {
	if err := f.record("CreateListener"); err != nil {
		return nil, err
	}
	return &elb.CreateListenerOutput{Listeners: []elbtypes.Listener{{ListenerArn: f.id("arn:listener")}}}, nil
}

func (f *fakeAWS) DeleteListener(_ context.Context, _ *elb.DeleteListenerInput, _ ...func(*elb.Options)) (*elb.DeleteListenerOutput, error) {
	return &elb.DeleteListenerOutput{}, f.record("DeleteListener")
}

// Auto Scaling

func (f *fakeAWS) CreateAutoScalingGroup(_ context.Context, in *autoscaling.CreateAutoScalingGroupInput, _ ...func(*autoscaling.Options)) (*autoscaling.CreateAutoScalingGroupOutput, error) {
	f.asg = in
	return &autoscaling.CreateAutoScalingGroupOutput{}, f.record("CreateAutoScalingGroup")
}

func (f *fakeAWS) PutScalingPolicy(_ context.Context, in *autoscaling.PutScalingPolicyInput, _ ...func(*autoscaling.Options)) (*autoscaling.PutScalingPolicyOutput, error) {
	if err := f.record("PutScalingPolicy"); err != nil {
		return nil, err
	}
	f.policies = append(f.policies, in)
	return &autoscaling.PutScalingPolicyOutput{PolicyARN: f.id("arn:policy")}, nil
}

func (f *fakeAWS) DeleteAutoScalingGroup(_ context.Context, _ *autoscaling.DeleteAutoScalingGroupInput, _ ...func(*autoscaling.Options)) (*autoscaling.DeleteAutoScalingGroupOutput, error) {
	return &autoscaling.DeleteAutoScalingGroupOutput{}, f.record("DeleteAutoScalingGroup")
}

func (f *fakeAWS) DescribeAutoScalingGroups(_ context.Context, _ *autoscaling.DescribeAutoScalingGroupsInput, _ ...func(*autoscaling.Options)) (*autoscaling.DescribeAutoScalingGroupsOutput, error) {
	return &autoscaling.DescribeAutoScalingGroupsOutput{AutoScalingGroups: []astypes.AutoScalingGroup{}}, f.record("DescribeAutoScalingGroups")
}

// CloudWatch

func (f *fakeAWS) PutMetricAlarm(_ context.Context, in *cloudwatch.PutMetricAlarmInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricAlarmOutput, error) {
	f.alarms = append(f.alarms, in)
	return &cloudwatch.PutMetricAlarmOutput{}, f.record("PutMetricAlarm")
}

func (f *fakeAWS) DeleteAlarms(_ context.Context, _ *cloudwatch.DeleteAlarmsInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.DeleteAlarmsOutput, error) {
	return &cloudwatch.DeleteAlarmsOutput{}, f.record("DeleteAlarms")
}

// RDS

func (f *fakeAWS) CreateDBSubnetGroup(_ context.Context, _ *rds.CreateDBSubnetGroupInput, _ ...func(*rds.Options)) (*rds.CreateDBSubnetGroupOutput, error) {
	return &rds.CreateDBSubnetGroupOutput{}, f.record("CreateDBSubnetGroup")
}

func (f *fakeAWS) DeleteDBSubnetGroup(_ context.Context, _ *rds.DeleteDBSubnetGroupInput, _ ...func(*rds.Options)) (*rds.DeleteDBSubnetGroupOutput, error) {
	return &rds.DeleteDBSubnetGroupOutput{}, f.record("DeleteDBSubnetGroup")
}

func (f *fakeAWS) CreateDBInstance(_ context.Context, in *rds.CreateDBInstanceInput, _ ...func(*rds.Options)) (*rds.CreateDBInstanceOutput, error) {
	if err := f.record("CreateDBInstance"); err != nil {
		return nil, err
	}
	f.dbInstance = in
	return &rds.CreateDBInstanceOutput{}, nil
}

func (f *fakeAWS) DescribeDBInstances(_ context.Context, in *rds.DescribeDBInstancesInput, _ ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error) {
	if err := f.record("DescribeDBInstances"); err != nil {
		return nil, err
	}
	if f.dbDeleted {
		return nil, &rdstypes.DBInstanceNotFoundFault{Message: awsv2.String("not found")}
	}
	return &rds.DescribeDBInstancesOutput{DBInstances: []rdstypes.DBInstance{{
		DBInstanceIdentifier: in.DBInstanceIdentifier,
		DBInstanceStatus:     awsv2.String("available"),
		Endpoint: &rdstypes.Endpoint{
			Address: awsv2.String("skh-postgres.abc123.us-west-2.rds.amazonaws.com"),
			Port:    awsv2.Int32(5432),
		},
	}}}, nil
}

func (f *fakeAWS) DeleteDBInstance(_ context.Context, _ *rds.DeleteDBInstanceInput, _ ...func(*rds.Options)) (*rds.DeleteDBInstanceOutput, error) {
	if err := f.record("DeleteDBInstance"); err != nil {
		return nil, err
	}
	f.dbDeleted = true
	return &rds.DeleteDBInstanceOutput{}, nil
}

// S3

func (f *fakeAWS) CreateBucket(_ context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.bucket = in
	return &s3.CreateBucketOutput{}, f.record("CreateBucket")
}

func (f *fakeAWS) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if err := f.record("PutObject"); err != nil {
		return nil, err
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[awsv2.ToString(in.Key)] = string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeAWS) ListObjectsV2(_ context.Context, _ *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if err := f.record("ListObjectsV2"); err != nil {
		return nil, err
	}
	out := &s3.ListObjectsV2Output{}
	for k := range f.objects {
		out.Contents = append(out.Contents, s3types.Object{Key: awsv2.String(k)})
	}
	return out, nil
}

func (f *fakeAWS) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	for _, o := range in.Delete.Objects {
		delete(f.objects, awsv2.ToString(o.Key))
	}
	return &s3.DeleteObjectsOutput{}, f.record("DeleteObjects")
}

func (f *fakeAWS) DeleteBucket(_ context.Context, _ *s3.DeleteBucketInput, _ ...func(*s3.Options)) (*s3.DeleteBucketOutput, error) {
	return &s3.DeleteBucketOutput{}, f.record("DeleteBucket")
}
