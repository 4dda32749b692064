// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package aws loads AWS SDK v2 configuration and constructs the service
// clients used to provision the Smart Kitchen Helper environment. Each client
// is exposed through a narrow interface so provisioning can run against fakes.
package aws
