// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package provision builds and tears down the AWS environment that hosts the
// Smart Kitchen Helper web tier: a two-AZ VPC with public and private
// subnets, a NAT gateway, a bastion and two web servers behind an
// application load balancer, an auto scaling group driven by CPU alarms, an
// S3 bucket holding the application code, and a Multi-AZ PostgreSQL
// instance.
//
// Up runs a fixed, ordered list of steps and records every created resource
// in a Report. Down walks a Report in reverse dependency order.
package provision
