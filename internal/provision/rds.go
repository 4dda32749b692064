// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"context"
	"fmt"
	"strconv"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/smartkitchen/skhctl/internal/config"
	"github.com/smartkitchen/skhctl/internal/log"
)

func (p *Provisioner) rdsTags(name string) []rdstypes.Tag {
	return []rdstypes.Tag{
		{Key: awsv2.String("Name"), Value: awsv2.String(p.name(name))},
		{Key: awsv2.String(ManagedByTag), Value: awsv2.String("skhctl")},
	}
}

// createDatabase creates the subnet group and the PostgreSQL instance, waits
// for it, then records the endpoint in the report and the dotenv file.
func (p *Provisioner) createDatabase(ctx context.Context, rep *Report) error {
	if err := need("database security group", rep.DBSecurityGroupID); err != nil {
		return err
	}
	if len(rep.PrivateSubnetIDs) < 2 { //nolint:mnd
		return need("two private subnets", "")
	}

	group := p.hyphenName("db_subnet_group")
	if _, err := p.Clients.RDS.CreateDBSubnetGroup(ctx, &rds.CreateDBSubnetGroupInput{
		DBSubnetGroupName:        awsv2.String(group),
		DBSubnetGroupDescription: awsv2.String("Subnet group for the Smart Kitchen Helper database"),
		SubnetIds:                rep.PrivateSubnetIDs,
		Tags:                     p.rdsTags("db_subnet_group"),
	}); err != nil {
		return FriendlyAWS(err, p.errCtx("create db subnet group", "db subnet group"))
	}
	rep.DBSubnetGroupName = group
	log.Infof("DB subnet group created: %s", group)

	id := p.hyphenName("postgres")
	if _, err := p.Clients.RDS.CreateDBInstance(ctx, &rds.CreateDBInstanceInput{
		DBInstanceIdentifier:  awsv2.String(id),
		DBInstanceClass:       awsv2.String(p.Params.DB.InstanceClass),
		Engine:                awsv2.String("postgres"),
		AllocatedStorage:      awsv2.Int32(DBStorageGiB),
		StorageType:           awsv2.String("gp2"),
		DBName:                awsv2.String(p.Params.DB.Name),
		MasterUsername:        awsv2.String(p.Params.DB.Username),
		MasterUserPassword:    awsv2.String(p.Params.DB.Password),
		VpcSecurityGroupIds:   []string{rep.DBSecurityGroupID},
		DBSubnetGroupName:     awsv2.String(group),
		MultiAZ:               awsv2.Bool(true),
		StorageEncrypted:      awsv2.Bool(true),
		BackupRetentionPeriod: awsv2.Int32(DBBackupDays),
		PubliclyAccessible:    awsv2.Bool(false),
		Port:                  awsv2.Int32(PostgresPort),
		Tags:                  p.rdsTags("postgres"),
	}); err != nil {
		return FriendlyAWS(err, p.errCtx("create db instance", "db instance"))
	}
	rep.DBInstanceID = id
	log.Infof("RDS instance %s creating, waiting up to %s", id, p.Params.RDSWait)

	waiter := rds.NewDBInstanceAvailableWaiter(p.Clients.RDS)
	out, err := waiter.WaitForOutput(ctx, &rds.DescribeDBInstancesInput{
		DBInstanceIdentifier: awsv2.String(id),
	}, p.Params.RDSWait)
	if err != nil {
		return fmt.Errorf("db instance %s did not become available: %w", id, err)
	}
	if len(out.DBInstances) == 0 || out.DBInstances[0].Endpoint == nil {
		return fmt.Errorf("db instance %s has no endpoint", id)
	}

	ep := out.DBInstances[0].Endpoint
	rep.DBEndpoint = awsv2.ToString(ep.Address)
	rep.DBPort = awsv2.ToInt32(ep.Port)
	log.Infof("RDS instance available at %s:%d", rep.DBEndpoint, rep.DBPort)

	if err := config.SetEnvKey(p.Params.EnvFile, "POSTGRES_HOST", rep.DBEndpoint); err != nil {
		return err
	}
	if err := config.SetEnvKey(p.Params.EnvFile, "POSTGRES_PORT", strconv.Itoa(int(rep.DBPort))); err != nil {
		return err
	}
	log.Infof("Updated %s with POSTGRES_HOST and POSTGRES_PORT", nonEmpty(p.Params.EnvFile, config.DefaultEnvFile))
	return nil
}
