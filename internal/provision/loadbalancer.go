// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"context"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	elb "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbtypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"

	"github.com/smartkitchen/skhctl/internal/log"
)

func (p *Provisioner) elbTags(name string) []elbtypes.Tag {
	return []elbtypes.Tag{
		{Key: awsv2.String("Name"), Value: awsv2.String(p.name(name))},
		{Key: awsv2.String(ManagedByTag), Value: awsv2.String("skhctl")},
	}
}

func (p *Provisioner) createTargetGroup(ctx context.Context, rep *Report) error {
	if err := need("vpc", rep.VpcID); err != nil {
		return err
	}

	out, err := p.Clients.ELB.CreateTargetGroup(ctx, &elb.CreateTargetGroupInput{
		Name:                       awsv2.String(p.hyphenName("tg")),
		Protocol:                   elbtypes.ProtocolEnumHttp,
		Port:                       awsv2.Int32(80),
		VpcId:                      awsv2.String(rep.VpcID),
		TargetType:                 elbtypes.TargetTypeEnumInstance,
		HealthCheckProtocol:        elbtypes.ProtocolEnumHttp,
		HealthCheckPath:            awsv2.String(HealthCheckPath),
		HealthCheckIntervalSeconds: awsv2.Int32(HealthCheckInterval),
		HealthCheckTimeoutSeconds:  awsv2.Int32(HealthCheckTimeout),
		HealthyThresholdCount:      awsv2.Int32(HealthyThreshold),
		UnhealthyThresholdCount:    awsv2.Int32(UnhealthyThreshold),
		Tags:                       p.elbTags("tg"),
	})
	if err != nil {
		return FriendlyAWS(err, p.errCtx("create target group", "target group"))
	}
	if len(out.TargetGroups) == 0 {
		return fmt.Errorf("create target group returned no target group")
	}
	rep.TargetGroupARN = awsv2.ToString(out.TargetGroups[0].TargetGroupArn)
	log.Infof("Target group created: %s", rep.TargetGroupARN)

	if len(rep.WebInstanceIDs) == 0 {
		log.Warnf("No web servers to register with %s", rep.TargetGroupARN)
		return nil
	}

	targets := make([]elbtypes.TargetDescription, 0, len(rep.WebInstanceIDs))
	for _, id := range rep.WebInstanceIDs {
		targets = append(targets, elbtypes.TargetDescription{Id: awsv2.String(id), Port: awsv2.Int32(80)})
	}
	if _, err := p.Clients.ELB.RegisterTargets(ctx, &elb.RegisterTargetsInput{
		TargetGroupArn: awsv2.String(rep.TargetGroupARN),
		Targets:        targets,
	}); err != nil {
		return FriendlyAWS(err, p.errCtx("register targets", "target group"))
	}
	log.Infof("Registered %d web servers with the target group", len(targets))
	return nil
}

func (p *Provisioner) createLoadBalancer(ctx context.Context, rep *Report) error {
	if err := need("target group and public security group", rep.TargetGroupARN, rep.PublicSecurityGroupID); err != nil {
		return err
	}
	if len(rep.PublicSubnetIDs) < 2 { //nolint:mnd
		return need("two public subnets", "")
	}

	out, err := p.Clients.ELB.CreateLoadBalancer(ctx, &elb.CreateLoadBalancerInput{
		Name:           awsv2.String(p.hyphenName("alb")),
		Subnets:        rep.PublicSubnetIDs,
		SecurityGroups: []string{rep.PublicSecurityGroupID},
		Scheme:         elbtypes.LoadBalancerSchemeEnumInternetFacing,
		Type:           elbtypes.LoadBalancerTypeEnumApplication,
		IpAddressType:  elbtypes.IpAddressTypeIpv4,
		Tags:           p.elbTags("alb"),
	})
	if err != nil {
		return FriendlyAWS(err, p.errCtx("create load balancer", "load balancer"))
	}
	if len(out.LoadBalancers) == 0 {
		return fmt.Errorf("create load balancer returned no load balancer")
	}
	rep.LoadBalancerARN = awsv2.ToString(out.LoadBalancers[0].LoadBalancerArn)
	rep.LoadBalancerDNS = awsv2.ToString(out.LoadBalancers[0].DNSName)
	log.Infof("ALB created: %s", rep.LoadBalancerDNS)

	lout, err := p.Clients.ELB.CreateListener(ctx, &elb.CreateListenerInput{
		LoadBalancerArn: awsv2.String(rep.LoadBalancerARN),
		Protocol:        elbtypes.ProtocolEnumHttp,
		Port:            awsv2.Int32(80),
		DefaultActions: []elbtypes.Action{{
			Type:           elbtypes.ActionTypeEnumForward,
			TargetGroupArn: awsv2.String(rep.TargetGroupARN),
		}},
	})
	if err != nil {
		return FriendlyAWS(err, p.errCtx("create listener", "listener"))
	}
	if len(lout.Listeners) > 0 {
		rep.ListenerARN = awsv2.ToString(lout.Listeners[0].ListenerArn)
	}
	log.Info("Listener created for ALB")
	return nil
}
