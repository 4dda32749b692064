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

func (p *Provisioner) createVPC(ctx context.Context, rep *Report) error {
	out, err := p.Clients.EC2.CreateVpc(ctx, &ec2.CreateVpcInput{
		CidrBlock:         awsv2.String(VPCCIDR),
		TagSpecifications: p.ec2Tags(ec2types.ResourceTypeVpc, "vpc"),
	})
	if err != nil {
		return FriendlyAWS(err, p.errCtx("create vpc", "vpc"))
	}
	rep.VpcID = awsv2.ToString(out.Vpc.VpcId)

	// One attribute per call.
	for _, in := range []*ec2.ModifyVpcAttributeInput{
		{VpcId: out.Vpc.VpcId, EnableDnsSupport: &ec2types.AttributeBooleanValue{Value: awsv2.Bool(true)}},
		{VpcId: out.Vpc.VpcId, EnableDnsHostnames: &ec2types.AttributeBooleanValue{Value: awsv2.Bool(true)}},
	} {
		if _, err := p.Clients.EC2.ModifyVpcAttribute(ctx, in); err != nil {
			return FriendlyAWS(err, p.errCtx("enable vpc dns", "vpc"))
		}
	}

	log.Infof("VPC created: %s", rep.VpcID)
	return nil
}

func (p *Provisioner) pickZones(ctx context.Context, rep *Report) error {
	out, err := p.Clients.EC2.DescribeAvailabilityZones(ctx, &ec2.DescribeAvailabilityZonesInput{
		Filters: []ec2types.Filter{{Name: awsv2.String("state"), Values: []string{"available"}}},
	})
	if err != nil {
		return FriendlyAWS(err, p.errCtx("describe availability zones", "availability zones"))
	}

	var zones []string
	for _, z := range out.AvailabilityZones {
		if z.State == ec2types.AvailabilityZoneStateAvailable || z.State == "" {
			zones = append(zones, awsv2.ToString(z.ZoneName))
		}
		if len(zones) == 2 { //nolint:mnd
			break
		}
	}
	if len(zones) < 2 { //nolint:mnd
		return fmt.Errorf("region %s has %d available zones, need 2", p.Clients.Region, len(zones))
	}

	rep.AvailabilityZones = zones
	log.Infof("Using availability zones %s and %s", zones[0], zones[1])
	return nil
}

func (p *Provisioner) createSubnets(ctx context.Context, rep *Report) error {
	if err := need("vpc and availability zones", rep.VpcID); err != nil {
		return err
	}
	if len(rep.AvailabilityZones) < 2 { //nolint:mnd
		return need("availability zones", "")
	}

	for _, spec := range subnetLayout {
		out, err := p.Clients.EC2.CreateSubnet(ctx, &ec2.CreateSubnetInput{
			VpcId:             awsv2.String(rep.VpcID),
			CidrBlock:         awsv2.String(spec.CIDR),
			AvailabilityZone:  awsv2.String(rep.AvailabilityZones[spec.Zone]),
			TagSpecifications: p.ec2Tags(ec2types.ResourceTypeSubnet, spec.Name),
		})
		if err != nil {
			return FriendlyAWS(err, p.errCtx("create subnet "+spec.CIDR, "subnet"))
		}
		id := awsv2.ToString(out.Subnet.SubnetId)

		if spec.Public {
			rep.PublicSubnetIDs = append(rep.PublicSubnetIDs, id)
			if _, err := p.Clients.EC2.ModifySubnetAttribute(ctx, &ec2.ModifySubnetAttributeInput{
				SubnetId:            awsv2.String(id),
				MapPublicIpOnLaunch: &ec2types.AttributeBooleanValue{Value: awsv2.Bool(true)},
			}); err != nil {
				return FriendlyAWS(err, p.errCtx("map public ip on launch", "subnet"))
			}
		} else {
			rep.PrivateSubnetIDs = append(rep.PrivateSubnetIDs, id)
		}
		log.Infof("Subnet %s created: %s (%s)", spec.CIDR, id, rep.AvailabilityZones[spec.Zone])
	}
	return nil
}

func (p *Provisioner) createInternetGateway(ctx context.Context, rep *Report) error {
	if err := need("vpc and public subnets", rep.VpcID); err != nil {
		return err
	}

	igw, err := p.Clients.EC2.CreateInternetGateway(ctx, &ec2.CreateInternetGatewayInput{
		TagSpecifications: p.ec2Tags(ec2types.ResourceTypeInternetGateway, "igw"),
	})
	if err != nil {
		return FriendlyAWS(err, p.errCtx("create internet gateway", "internet gateway"))
	}
	rep.InternetGatewayID = awsv2.ToString(igw.InternetGateway.InternetGatewayId)

	if _, err := p.Clients.EC2.AttachInternetGateway(ctx, &ec2.AttachInternetGatewayInput{
		InternetGatewayId: awsv2.String(rep.InternetGatewayID),
		VpcId:             awsv2.String(rep.VpcID),
	}); err != nil {
		return FriendlyAWS(err, p.errCtx("attach internet gateway", "internet gateway"))
	}
	log.Infof("Internet Gateway created and attached: %s", rep.InternetGatewayID)

	return p.createRouteTable(ctx, rep, "public_rt", &ec2.CreateRouteInput{
		DestinationCidrBlock: awsv2.String(AnywhereCIDR),
		GatewayId:            awsv2.String(rep.InternetGatewayID),
	}, rep.PublicSubnetIDs, &rep.PublicRouteTableID)
}

func (p *Provisioner) createNATGateway(ctx context.Context, rep *Report) error {
	if len(rep.PublicSubnetIDs) == 0 {
		return need("public subnets", "")
	}

	eip, err := p.Clients.EC2.AllocateAddress(ctx, &ec2.AllocateAddressInput{
		Domain:            ec2types.DomainTypeVpc,
		TagSpecifications: p.ec2Tags(ec2types.ResourceTypeElasticIp, "nat_eip"),
	})
	if err != nil {
		return FriendlyAWS(err, p.errCtx("allocate elastic ip", "elastic ip"))
	}
	rep.ElasticIPAllocationID = awsv2.ToString(eip.AllocationId)

	nat, err := p.Clients.EC2.CreateNatGateway(ctx, &ec2.CreateNatGatewayInput{
		SubnetId:          awsv2.String(rep.PublicSubnetIDs[0]),
		AllocationId:      awsv2.String(rep.ElasticIPAllocationID),
		TagSpecifications: p.ec2Tags(ec2types.ResourceTypeNatgateway, "nat"),
	})
	if err != nil {
		return FriendlyAWS(err, p.errCtx("create nat gateway", "nat gateway"))
	}
	rep.NatGatewayID = awsv2.ToString(nat.NatGateway.NatGatewayId)

	log.Infof("Waiting for NAT Gateway %s to become available", rep.NatGatewayID)
	waiter := ec2.NewNatGatewayAvailableWaiter(p.Clients.EC2)
	if err := waiter.Wait(ctx, &ec2.DescribeNatGatewaysInput{
		NatGatewayIds: []string{rep.NatGatewayID},
	}, p.Params.Wait); err != nil {
		return fmt.Errorf("nat gateway %s did not become available: %w", rep.NatGatewayID, err)
	}
	log.Infof("NAT Gateway created: %s", rep.NatGatewayID)

	return p.createRouteTable(ctx, rep, "private_rt", &ec2.CreateRouteInput{
		DestinationCidrBlock: awsv2.String(AnywhereCIDR),
		NatGatewayId:         awsv2.String(rep.NatGatewayID),
	}, rep.PrivateSubnetIDs, &rep.PrivateRouteTableID)
}

// createRouteTable creates a table with one default route, associates it with
// subnets and stores its id in dst as soon as it exists. The route input's
// RouteTableId is filled in here.
func (p *Provisioner) createRouteTable(ctx context.Context, rep *Report, name string, route *ec2.CreateRouteInput, subnets []string, dst *string) error {
	out, err := p.Clients.EC2.CreateRouteTable(ctx, &ec2.CreateRouteTableInput{
		VpcId:             awsv2.String(rep.VpcID),
		TagSpecifications: p.ec2Tags(ec2types.ResourceTypeRouteTable, name),
	})
	if err != nil {
		return FriendlyAWS(err, p.errCtx("create route table", "route table"))
	}
	*dst = awsv2.ToString(out.RouteTable.RouteTableId)

	route.RouteTableId = awsv2.String(*dst)
	if _, err := p.Clients.EC2.CreateRoute(ctx, route); err != nil {
		return FriendlyAWS(err, p.errCtx("create default route", "route"))
	}

	for _, subnet := range subnets {
		assoc, err := p.Clients.EC2.AssociateRouteTable(ctx, &ec2.AssociateRouteTableInput{
			RouteTableId: awsv2.String(*dst),
			SubnetId:     awsv2.String(subnet),
		})
		if err != nil {
			return FriendlyAWS(err, p.errCtx("associate route table", "route table"))
		}
		rep.RouteTableAssociationIDs = append(rep.RouteTableAssociationIDs, awsv2.ToString(assoc.AssociationId))
	}

	log.Infof("Route table %s created: %s", p.name(name), *dst)
	return nil
}
