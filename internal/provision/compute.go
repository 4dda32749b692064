// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"context"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/smartkitchen/skhctl/internal/log"
)

// InstanceParams describes one EC2 instance.
type InstanceParams struct {
	Name            string
	SubnetID        string
	SecurityGroupID string
	UserData        string
}

func (p *Provisioner) runInstance(ctx context.Context, in InstanceParams) (string, error) {
	req := &ec2.RunInstancesInput{
		ImageId:           awsv2.String(p.Params.AMI),
		InstanceType:      ec2types.InstanceType(p.Params.InstanceType),
		MinCount:          awsv2.Int32(1),
		MaxCount:          awsv2.Int32(1),
		SubnetId:          awsv2.String(in.SubnetID),
		SecurityGroupIds:  []string{in.SecurityGroupID},
		TagSpecifications: p.ec2Tags(ec2types.ResourceTypeInstance, in.Name),
	}
	if p.Params.KeyName != "" {
		req.KeyName = awsv2.String(p.Params.KeyName)
	}
	if in.UserData != "" {
		req.UserData = awsv2.String(in.UserData)
	}

	out, err := p.Clients.EC2.RunInstances(ctx, req)
	if err != nil {
		return "", FriendlyAWS(err, p.errCtx("run instance "+in.Name, "instances"))
	}
	if len(out.Instances) == 0 {
		return "", fmt.Errorf("run instance %s returned no instances", in.Name)
	}
	return awsv2.ToString(out.Instances[0].InstanceId), nil
}

// launchInstances starts the bastion in the first public subnet and one web
// server per private subnet, then waits for all of them to run. Targets can
// only be registered once instances are running.
func (p *Provisioner) launchInstances(ctx context.Context, rep *Report) error {
	if len(rep.PublicSubnetIDs) == 0 || len(rep.PrivateSubnetIDs) < 2 { //nolint:mnd
		return need("subnets", "")
	}
	if err := need("security groups", rep.PublicSecurityGroupID, rep.PrivateSecurityGroupID); err != nil {
		return err
	}

	id, err := p.runInstance(ctx, InstanceParams{
		Name:            "bastion",
		SubnetID:        rep.PublicSubnetIDs[0],
		SecurityGroupID: rep.PublicSecurityGroupID,
	})
	if err != nil {
		return err
	}
	rep.BastionInstanceID = id
	log.Infof("Bastion host created: %s", id)

	for i, subnet := range rep.PrivateSubnetIDs[:2] {
		id, err := p.runInstance(ctx, InstanceParams{
			Name:            fmt.Sprintf("web_server_%d", i+1),
			SubnetID:        subnet,
			SecurityGroupID: rep.PrivateSecurityGroupID,
			UserData:        p.userData,
		})
		if err != nil {
			return err
		}
		rep.WebInstanceIDs = append(rep.WebInstanceIDs, id)
		log.Infof("Web server %d created: %s", i+1, id)
	}

	ids := append([]string{rep.BastionInstanceID}, rep.WebInstanceIDs...)
	log.Infof("Waiting for %d instances to run", len(ids))
	waiter := ec2.NewInstanceRunningWaiter(p.Clients.EC2)
	if err := waiter.Wait(ctx, &ec2.DescribeInstancesInput{InstanceIds: ids}, p.Params.Wait); err != nil {
		return fmt.Errorf("instances did not reach running: %w", err)
	}
	return nil
}
