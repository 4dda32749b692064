// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/smartkitchen/skhctl/internal/log"
)

const userDataScript = `#!/bin/bash
yum update -y
yum install -y httpd git php php-pgsql
amazon-linux-extras install postgresql10 -y
systemctl start httpd
systemctl enable httpd
mkdir -p /var/www/html/
aws s3 cp s3://%s/myapp /var/www/html/myapp --recursive
echo OK > /var/www/html/health
chmod -R 755 /var/www/html/
systemctl restart httpd
`

// UserData returns the boot script for web servers, base64-encoded as
// RunInstances and launch templates expect.
func UserData(bucket string) string {
	return base64.StdEncoding.EncodeToString(fmt.Appendf(nil, userDataScript, bucket))
}

func (p *Provisioner) buildUserData(_ context.Context, rep *Report) error {
	bucket := rep.BucketName
	if bucket == "" {
		bucket = p.Params.BucketName
	}
	if err := need("bucket name", bucket); err != nil {
		return err
	}
	p.userData = UserData(bucket)
	log.Debugf("user data built for bucket %s", bucket)
	return nil
}
