// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Network layout. The CIDRs are fixed; only the zones vary by region.
const (
	VPCCIDR         = "10.0.0.0/16"
	PublicSubnet1   = "10.0.1.0/24"
	PrivateSubnet1  = "10.0.2.0/24"
	PublicSubnet2   = "10.0.3.0/24"
	PrivateSubnet2  = "10.0.4.0/24"
	AnywhereCIDR    = "0.0.0.0/0"
	PostgresPort    = 5432
	DefaultPrefix   = "skh_"
	DefaultInstance = "t2.micro"
	DefaultDBClass  = "db.t3.micro"
	DefaultDBName   = "smart_kitchen_helper"
	DefaultDBUser   = "skhadmin"
)

// Scaling and health check settings for the web tier.
const (
	ASGMin              = 2
	ASGMax              = 4
	ASGDesired          = 2
	ASGGracePeriod      = 120
	ScalingCooldown     = 300
	ScaleOutCPU         = 60.0
	ScaleInCPU          = 30.0
	AlarmPeriod         = 300
	AlarmEvalPeriods    = 2
	HealthCheckPath     = "/health"
	HealthCheckInterval = 30
	HealthCheckTimeout  = 5
	HealthyThreshold    = 5
	UnhealthyThreshold  = 2
	DBStorageGiB        = 20
	DBBackupDays        = 7
)

// Default wait bounds.
const (
	DefaultWait    = 15 * time.Minute
	DefaultRDSWait = 40 * time.Minute
)

// ErrMissingPrerequisite is returned when a step runs after a step it depends
// on was skipped.
var ErrMissingPrerequisite = errors.New("missing prerequisite")

// DBParams describes the RDS PostgreSQL instance.
type DBParams struct {
	Name          string
	Username      string
	Password      string
	InstanceClass string
}

// Params is the user-supplied configuration for Up.
type Params struct {
	Prefix       string
	AMI          string
	InstanceType string
	KeyName      string
	BucketName   string
	GitRepoURL   string
	DB           DBParams
	Wait         time.Duration
	RDSWait      time.Duration
	EnvFile      string
	Skip         []string
}

// WithDefaults fills zero-valued fields.
func (p Params) WithDefaults() Params {
	if p.Prefix == "" {
		p.Prefix = DefaultPrefix
	}
	if p.InstanceType == "" {
		p.InstanceType = DefaultInstance
	}
	if p.DB.InstanceClass == "" {
		p.DB.InstanceClass = DefaultDBClass
	}
	if p.DB.Name == "" {
		p.DB.Name = DefaultDBName
	}
	if p.DB.Username == "" {
		p.DB.Username = DefaultDBUser
	}
	if p.Wait <= 0 {
		p.Wait = DefaultWait
	}
	if p.RDSWait <= 0 {
		p.RDSWait = DefaultRDSWait
	}
	return p
}

// Skipped reports whether step is in the skip list.
func (p Params) Skipped(step string) bool {
	return slices.Contains(p.Skip, step)
}

// Validate checks the skip list against the known steps and that the inputs
// needed by the enabled steps are present.
func (p Params) Validate() error {
	var errs []error
	for _, s := range p.Skip {
		if !slices.Contains(StepNames, s) {
			errs = append(errs, fmt.Errorf("unknown step %q (valid: %s)", s, strings.Join(StepNames, ",")))
		}
	}

	needsAMI := !p.Skipped(StepInstances) || !p.Skipped(StepLaunchTemplate)
	if needsAMI && p.AMI == "" {
		errs = append(errs, errors.New("an AMI id is required to launch instances"))
	}

	if !p.Skipped(StepRDS) && p.DB.Password == "" {
		errs = append(errs, errors.New("a database password is required to create the RDS instance"))
	}

	return errors.Join(errs...)
}

// subnetSpec is one subnet of the fixed layout.
type subnetSpec struct {
	Name   string
	CIDR   string
	Zone   int
	Public bool
}

var subnetLayout = []subnetSpec{
	{Name: "public_subnet_1", CIDR: PublicSubnet1, Zone: 0, Public: true},
	{Name: "private_subnet_1", CIDR: PrivateSubnet1, Zone: 0},
	{Name: "public_subnet_2", CIDR: PublicSubnet2, Zone: 1, Public: true},
	{Name: "private_subnet_2", CIDR: PrivateSubnet2, Zone: 1},
}

// ingressRule opens one tcp port to a CIDR.
type ingressRule struct {
	Port int32
	CIDR string
}

// securityGroupSpec is one of the three security groups.
type securityGroupSpec struct {
	Name        string
	Description string
	Rules       []ingressRule
}

var securityGroupLayout = []securityGroupSpec{
	{
		Name:        "public_sg",
		Description: "Public security group for bastion and load balancer",
		Rules:       []ingressRule{{22, AnywhereCIDR}, {80, AnywhereCIDR}, {443, AnywhereCIDR}},
	},
	{
		Name:        "private_sg",
		Description: "Private security group for web servers",
		Rules:       []ingressRule{{22, AnywhereCIDR}, {80, AnywhereCIDR}},
	},
	{
		Name:        "db_sg",
		Description: "Database security group",
		Rules:       []ingressRule{{PostgresPort, VPCCIDR}},
	},
}
