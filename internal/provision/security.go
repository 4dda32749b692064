// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"context"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/smartkitchen/skhctl/internal/log"
)

func (p *Provisioner) createSecurityGroups(ctx context.Context, rep *Report) error {
	if err := need("vpc", rep.VpcID); err != nil {
		return err
	}

	dst := []*string{&rep.PublicSecurityGroupID, &rep.PrivateSecurityGroupID, &rep.DBSecurityGroupID}
	for i, spec := range securityGroupLayout {
		out, err := p.Clients.EC2.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
			GroupName:         awsv2.String(p.name(spec.Name)),
			Description:       awsv2.String(spec.Description),
			VpcId:             awsv2.String(rep.VpcID),
			TagSpecifications: p.ec2Tags(ec2types.ResourceTypeSecurityGroup, spec.Name),
		})
		if err != nil {
			return FriendlyAWS(err, p.errCtx("create security group "+spec.Name, "security group"))
		}
		*dst[i] = awsv2.ToString(out.GroupId)

		perms := make([]ec2types.IpPermission, 0, len(spec.Rules))
		for _, r := range spec.Rules {
			perms = append(perms, ec2types.IpPermission{
				IpProtocol: awsv2.String("tcp"),
				FromPort:   awsv2.Int32(r.Port),
				ToPort:     awsv2.Int32(r.Port),
				IpRanges:   []ec2types.IpRange{{CidrIp: awsv2.String(r.CIDR)}},
			})
		}
		if _, err := p.Clients.EC2.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
			GroupId:       out.GroupId,
			IpPermissions: perms,
		}); err != nil {
			return FriendlyAWS(err, p.errCtx("authorize ingress for "+spec.Name, "security group rule"))
		}

		log.Infof("Security group %s created: %s", p.name(spec.Name), *dst[i])
	}
	return nil
}
