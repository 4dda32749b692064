// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"context"
	"fmt"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	awsx "github.com/smartkitchen/skhctl/internal/aws"
	"github.com/smartkitchen/skhctl/internal/log"
)

// Step names accepted by --skip, in execution order.
const (
	StepVPC            = "vpc"
	StepZones          = "zones"
	StepSubnets        = "subnets"
	StepIGW            = "igw"
	StepNAT            = "nat"
	StepSecurityGroups = "sg"
	StepBucket         = "bucket"
	StepUserData       = "userdata"
	StepInstances      = "instances"
	StepTargetGroup    = "targetgroup"
	StepALB            = "alb"
	StepLaunchTemplate = "launchtemplate"
	StepASG            = "asg"
	StepScaling        = "scaling"
	StepRDS            = "rds"
	StepValidate       = "validate"
)

// StepNames lists every step in execution order.
var StepNames = []string{
	StepVPC, StepZones, StepSubnets, StepIGW, StepNAT, StepSecurityGroups,
	StepBucket, StepUserData, StepInstances, StepTargetGroup, StepALB,
	StepLaunchTemplate, StepASG, StepScaling, StepRDS, StepValidate,
}

// ManagedByTag marks every resource skhctl creates.
const ManagedByTag = "ManagedBy"

type step struct {
	name string
	run  func(context.Context, *Report) error
}

// Provisioner creates and deletes the environment with one set of clients.
type Provisioner struct {
	Clients *awsx.Clients
	Params  Params

	// Clone fetches the application repository into a directory. Defaults to
	// a shallow go-git clone.
	Clone CloneFunc

	userData string
}

// New returns a Provisioner with defaults applied to params.
func New(clients *awsx.Clients, params Params) *Provisioner {
	return &Provisioner{
		Clients: clients,
		Params:  params.WithDefaults(),
		Clone:   GitClone,
	}
}

func (p *Provisioner) steps() []step {
	return []step{
		{StepVPC, p.createVPC},
		{StepZones, p.pickZones},
		{StepSubnets, p.createSubnets},
		{StepIGW, p.createInternetGateway},
		{StepNAT, p.createNATGateway},
		{StepSecurityGroups, p.createSecurityGroups},
		{StepBucket, p.createBucket},
		{StepUserData, p.buildUserData},
		{StepInstances, p.launchInstances},
		{StepTargetGroup, p.createTargetGroup},
		{StepALB, p.createLoadBalancer},
		{StepLaunchTemplate, p.createLaunchTemplate},
		{StepASG, p.createAutoScalingGroup},
		{StepScaling, p.createScalingPolicies},
		{StepRDS, p.createDatabase},
		{StepValidate, p.validate},
	}
}

// Up runs every step not in Params.Skip. It stops at the first failure and
// returns the partial report together with the error, so the caller can save
// it for Down.
func (p *Provisioner) Up(ctx context.Context) (*Report, error) {
	if err := p.Params.Validate(); err != nil {
		return nil, err
	}

	rep := &Report{Region: p.Clients.Region}
	for _, s := range p.steps() {
		if p.Params.Skipped(s.name) {
			log.Infof("Skipping step %s", s.name)
			continue
		}
		log.Debugf("step %s starting", s.name)
		if err := s.run(ctx, rep); err != nil {
			return rep, fmt.Errorf("step %s: %w", s.name, err)
		}
		rep.CompletedSteps = append(rep.CompletedSteps, s.name)
	}
	return rep, nil
}

func (p *Provisioner) validate(_ context.Context, rep *Report) error {
	if url := rep.ApplicationURL(); url != "" {
		log.Infof("Access your web application via the ALB: %s", url)
	} else {
		log.Info("No load balancer was created, nothing to validate")
	}
	if rep.DBEndpoint != "" {
		log.Infof("PostgreSQL is reachable inside the VPC at %s:%d", rep.DBEndpoint, rep.DBPort)
	}
	return nil
}

// name returns the prefixed Name tag value.
func (p *Provisioner) name(s string) string {
	return p.Params.Prefix + s
}

// hyphenName is name() for services that only accept letters, digits and
// hyphens (ELB, RDS identifiers). ELB names are capped at 32 characters.
func (p *Provisioner) hyphenName(s string) string {
	n := strings.Trim(strings.ReplaceAll(strings.ToLower(p.name(s)), "_", "-"), "-")
	if len(n) > 32 { //nolint:mnd
		n = strings.TrimRight(n[:32], "-")
	}
	return n
}

func (p *Provisioner) ec2Tags(rt ec2types.ResourceType, name string) []ec2types.TagSpecification {
	return []ec2types.TagSpecification{{
		ResourceType: rt,
		Tags: []ec2types.Tag{
			{Key: awsv2.String("Name"), Value: awsv2.String(p.name(name))},
			{Key: awsv2.String(ManagedByTag), Value: awsv2.String("skhctl")},
		},
	}}
}

func (p *Provisioner) errCtx(op, resource string) ErrorContext {
	return ErrorContext{Region: p.Clients.Region, Operation: op, Resource: resource}
}

func need(what string, values ...string) error {
	for _, v := range values {
		if v == "" {
			return fmt.Errorf("%w: %s", ErrMissingPrerequisite, what)
		}
	}
	return nil
}
