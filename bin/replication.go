package main

import (
	"encoding/json"
	"log"

	"github.com/aws/aws-cdk-go/awscdk/v2/awsdms"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/jsii-runtime-go"
)

// Replication instance and task definitions

func createReplicationInstance(resources *StackResources) awsdms.CfnReplicationInstance {
	// DMS looks this role up by its exact name before it can manage
	// network interfaces in the VPC.
	awsiam.NewCfnRole(resources.stack, jsii.String("DmsVpcRole"), &awsiam.CfnRoleProps{
		RoleName: jsii.String("dms-vpc-role"),
		ManagedPolicyArns: jsii.Strings(
			"arn:aws:iam::aws:policy/service-role/AmazonDMSVPCManagementRole",
		),
		AssumeRolePolicyDocument: map[string]any{
			"Version": "2012-10-17",
			"Statement": []map[string]any{
				{
					"Effect":    "Allow",
					"Principal": map[string]any{"Service": "dms.amazonaws.com"},
					"Action":    "sts:AssumeRole",
				},
			},
		},
	})

	subnetIDs := make([]*string, 0, 2)
	for _, subnet := range *resources.vpc.PublicSubnets() {
		subnetIDs = append(subnetIDs, subnet.SubnetId())
	}

	subnetGroup := awsdms.NewCfnReplicationSubnetGroup(resources.stack, jsii.String("ReplSubnetGroup"), &awsdms.CfnReplicationSubnetGroupProps{
		ReplicationSubnetGroupDescription: jsii.String("Replication subnet group for the CDC sample"),
		SubnetIds:                         &subnetIDs,
	})

	return awsdms.NewCfnReplicationInstance(resources.stack, jsii.String("replication-instance"), &awsdms.CfnReplicationInstanceProps{
		ReplicationInstanceClass:         jsii.String("dms.t2.micro"),
		AllocatedStorage:                 jsii.Number(5),
		ReplicationSubnetGroupIdentifier: subnetGroup.Ref(),
		AllowMajorVersionUpgrade:         jsii.Bool(false),
		AutoMinorVersionUpgrade:          jsii.Bool(false),
		MultiAz:                          jsii.Bool(false),
		PubliclyAccessible:               jsii.Bool(true),
		VpcSecurityGroupIds:              jsii.Strings(*resources.securityGroup.SecurityGroupId()),
		AvailabilityZone:                 (*resources.vpc.PublicSubnets())[0].AvailabilityZone(),
	})
}

// tableMappings selects every table in the public schema for capture. The
// rule set is fixed at deploy time.
type tableMappings struct {
	Rules []mappingRule `json:"rules"`
}

type mappingRule struct {
	RuleType      string        `json:"rule-type"`
	RuleID        string        `json:"rule-id"`
	RuleName      string        `json:"rule-name"`
	ObjectLocator objectLocator `json:"object-locator"`
	RuleAction    string        `json:"rule-action"`
}

type objectLocator struct {
	SchemaName string `json:"schema-name"`
	TableName  string `json:"table-name"`
}

func createReplicationTask(resources *StackResources, id string,
	instance awsdms.CfnReplicationInstance,
	source awsdms.CfnEndpoint, target awsdms.CfnEndpoint) awsdms.CfnReplicationTask {

	mappings, err := json.Marshal(tableMappings{
		Rules: []mappingRule{
			{
				RuleType:      "selection",
				RuleID:        "1",
				RuleName:      "rule1",
				ObjectLocator: objectLocator{SchemaName: "public", TableName: "%"},
				RuleAction:    "include",
			},
		},
	})
	if err != nil {
		log.Fatalf("marshal table mappings: %v", err)
	}

	settings, err := json.Marshal(map[string]any{
		"Logging": map[string]any{"EnableLogging": true},
	})
	if err != nil {
		log.Fatalf("marshal task settings: %v", err)
	}

	return awsdms.NewCfnReplicationTask(resources.stack, jsii.String(id), &awsdms.CfnReplicationTaskProps{
		ReplicationTaskIdentifier: jsii.String(id),
		MigrationType:             jsii.String("cdc"),
		ReplicationInstanceArn:    instance.Ref(),
		SourceEndpointArn:         source.Ref(),
		TargetEndpointArn:         target.Ref(),
		TableMappings:             jsii.String(string(mappings)),
		ReplicationTaskSettings:   jsii.String(string(settings)),
	})
}
