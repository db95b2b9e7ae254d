package main

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awsdms"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/jsii-runtime-go"

	"github.com/30Piraten/dms-cdc/config"
)

// DMS endpoint definitions
func createSourceEndpoint(resources *StackResources, secretAccessRole awsiam.Role) awsdms.CfnEndpoint {
	return awsdms.NewCfnEndpoint(resources.stack, jsii.String("source-postgres"), &awsdms.CfnEndpointProps{
		EndpointType: jsii.String("source"),
		EngineName:   jsii.String("aurora-postgresql"),
		DatabaseName: jsii.String(config.CheckEnv("DB_NAME")),
		PostgreSqlSettings: &awsdms.CfnEndpoint_PostgreSqlSettingsProperty{
			SecretsManagerAccessRoleArn: secretAccessRole.RoleArn(),
			SecretsManagerSecretId:      resources.dbSecret.Ref(),
		},
	})
}

// The sink mode decides how chatty the target endpoint is: the default mode
// emits row-level data events only, the extended mode additionally emits
// control/DDL events and keeps null and empty column values in the payload.
func createTargetEndpoint(resources *StackResources) awsdms.CfnEndpoint {
	extended := resources.sinkMode == config.ModeExtended

	return awsdms.NewCfnEndpoint(resources.stack, jsii.String("target"), &awsdms.CfnEndpointProps{
		EndpointType: jsii.String("target"),
		EngineName:   jsii.String("kinesis"),
		KinesisSettings: &awsdms.CfnEndpoint_KinesisSettingsProperty{
			StreamArn:                   resources.stream.StreamArn(),
			MessageFormat:               jsii.String("json"),
			ServiceAccessRoleArn:        resources.dmsRole.RoleArn(),
			IncludeControlDetails:       jsii.Bool(extended),
			IncludeNullAndEmpty:         jsii.Bool(extended),
			IncludeTableAlterOperations: jsii.Bool(extended),
			IncludePartitionValue:       jsii.Bool(true),
			IncludeTransactionDetails:   jsii.Bool(false),
			PartitionIncludeSchemaTable: jsii.Bool(true),
		},
	})
}
