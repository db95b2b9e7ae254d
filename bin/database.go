package main

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsrds"
	"github.com/aws/jsii-runtime-go"

	"github.com/30Piraten/dms-cdc/config"
)

// Source database: an Aurora PostgreSQL cluster with logical replication
// switched on, which DMS requires for CDC.
func createAuroraCluster(resources *StackResources) awsrds.DatabaseCluster {
	engine := awsrds.DatabaseClusterEngine_AuroraPostgres(&awsrds.AuroraPostgresClusterEngineProps{
		Version: awsrds.AuroraPostgresEngineVersion_VER_15_3(),
	})

	parameterGroup := awsrds.NewParameterGroup(resources.stack, jsii.String("parameterGroup"), &awsrds.ParameterGroupProps{
		Engine: engine,
		Parameters: &map[string]*string{
			"rds.logical_replication": jsii.String("1"),
		},
	})

	credentials := awsrds.Credentials_FromPassword(
		jsii.String(config.CheckEnv("DB_USERNAME")),
		awscdk.SecretValue_UnsafePlainText(jsii.String(config.CheckEnv("DB_PASSWORD"))),
	)

	return awsrds.NewDatabaseCluster(resources.stack, jsii.String("auroraCluster"), &awsrds.DatabaseClusterProps{
		Engine:         engine,
		ParameterGroup: parameterGroup,
		Vpc:            resources.vpc,
		SecurityGroups: &[]awsec2.ISecurityGroup{resources.securityGroup},
		Writer:         awsrds.ClusterInstance_ServerlessV2(jsii.String("writer"), nil),
		Readers: &[]awsrds.IClusterInstance{
			awsrds.ClusterInstance_ServerlessV2(jsii.String("reader"), &awsrds.ServerlessV2ClusterInstanceProps{
				ScaleWithWriter: jsii.Bool(true),
			}),
		},
		ServerlessV2MinCapacity: jsii.Number(0.5),
		ServerlessV2MaxCapacity: jsii.Number(1),
		Credentials:             credentials,
		RemovalPolicy:           awscdk.RemovalPolicy_DESTROY,
		DefaultDatabaseName:     jsii.String(config.CheckEnv("DB_NAME")),
		VpcSubnets: &awsec2.SubnetSelection{
			SubnetType: awsec2.SubnetType_PUBLIC,
		},
	})
}
