// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultStateFile is where aws up records the Report.
const DefaultStateFile = "skh-provision.json"

// Report records every resource Up created. Down consumes it.
type Report struct {
	Region                   string   `json:"region" yaml:"region"`
	VpcID                    string   `json:"vpc_id,omitempty" yaml:"vpc_id,omitempty"`
	AvailabilityZones        []string `json:"availability_zones,omitempty" yaml:"availability_zones,omitempty"`
	PublicSubnetIDs          []string `json:"public_subnet_ids,omitempty" yaml:"public_subnet_ids,omitempty"`
	PrivateSubnetIDs         []string `json:"private_subnet_ids,omitempty" yaml:"private_subnet_ids,omitempty"`
	InternetGatewayID        string   `json:"internet_gateway_id,omitempty" yaml:"internet_gateway_id,omitempty"`
	PublicRouteTableID       string   `json:"public_route_table_id,omitempty" yaml:"public_route_table_id,omitempty"`
	PrivateRouteTableID      string   `json:"private_route_table_id,omitempty" yaml:"private_route_table_id,omitempty"`
	RouteTableAssociationIDs []string `json:"route_table_association_ids,omitempty" yaml:"route_table_association_ids,omitempty"`
	ElasticIPAllocationID    string   `json:"elastic_ip_allocation_id,omitempty" yaml:"elastic_ip_allocation_id,omitempty"`
	NatGatewayID             string   `json:"nat_gateway_id,omitempty" yaml:"nat_gateway_id,omitempty"`
	PublicSecurityGroupID    string   `json:"public_security_group_id,omitempty" yaml:"public_security_group_id,omitempty"`
	PrivateSecurityGroupID   string   `json:"private_security_group_id,omitempty" yaml:"private_security_group_id,omitempty"`
	DBSecurityGroupID        string   `json:"db_security_group_id,omitempty" yaml:"db_security_group_id,omitempty"`
	BucketName               string   `json:"bucket_name,omitempty" yaml:"bucket_name,omitempty"`
	UploadedObjects          int      `json:"uploaded_objects,omitempty" yaml:"uploaded_objects,omitempty"`
	BastionInstanceID        string   `json:"bastion_instance_id,omitempty" yaml:"bastion_instance_id,omitempty"`
	WebInstanceIDs           []string `json:"web_instance_ids,omitempty" yaml:"web_instance_ids,omitempty"`
	TargetGroupARN           string   `json:"target_group_arn,omitempty" yaml:"target_group_arn,omitempty"`
	LoadBalancerARN          string   `json:"load_balancer_arn,omitempty" yaml:"load_balancer_arn,omitempty"`
	LoadBalancerDNS          string   `json:"load_balancer_dns,omitempty" yaml:"load_balancer_dns,omitempty"`
	ListenerARN              string   `json:"listener_arn,omitempty" yaml:"listener_arn,omitempty"`
	LaunchTemplateID         string   `json:"launch_template_id,omitempty" yaml:"launch_template_id,omitempty"`
	AutoScalingGroupName     string   `json:"auto_scaling_group_name,omitempty" yaml:"auto_scaling_group_name,omitempty"`
	ScaleOutPolicyARN        string   `json:"scale_out_policy_arn,omitempty" yaml:"scale_out_policy_arn,omitempty"`
	ScaleInPolicyARN         string   `json:"scale_in_policy_arn,omitempty" yaml:"scale_in_policy_arn,omitempty"`
	AlarmNames               []string `json:"alarm_names,omitempty" yaml:"alarm_names,omitempty"`
	DBSubnetGroupName        string   `json:"db_subnet_group_name,omitempty" yaml:"db_subnet_group_name,omitempty"`
	DBInstanceID             string   `json:"db_instance_id,omitempty" yaml:"db_instance_id,omitempty"`
	DBEndpoint               string   `json:"db_endpoint,omitempty" yaml:"db_endpoint,omitempty"`
	DBPort                   int32    `json:"db_port,omitempty" yaml:"db_port,omitempty"`
	CompletedSteps           []string `json:"completed_steps,omitempty" yaml:"completed_steps,omitempty"`
}

// ApplicationURL is the HTTP address of the load balancer, or "".
func (r *Report) ApplicationURL() string {
	if r.LoadBalancerDNS == "" {
		return ""
	}
	return "http://" + r.LoadBalancerDNS
}

// Save writes the report as indented JSON.
func (r *Report) Save(path string) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o600); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// LoadReport reads a report written by Save.
func LoadReport(path string) (*Report, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	var r Report
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}
	return &r, nil
}
