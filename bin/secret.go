package main

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssecretsmanager"
	"github.com/aws/jsii-runtime-go"

	"github.com/30Piraten/dms-cdc/config"
)

// The secret is the single source of the database coordinates: the DMS
// source endpoint and the harness both read it. Port stays unquoted so
// consumers decode it as a number.
func createDatabaseSecret(resources *StackResources) awssecretsmanager.CfnSecret {
	host := resources.cluster.ClusterEndpoint().Hostname()
	port := awscdk.Token_AsString(resources.cluster.ClusterEndpoint().Port(), nil)

	secretString := fmt.Sprintf(
		`{"username": %q, "password": %q, "host": %q, "port": %s, "dbname": %q}`,
		config.CheckEnv("DB_USERNAME"),
		config.CheckEnv("DB_PASSWORD"),
		*host,
		*port,
		config.CheckEnv("DB_NAME"),
	)

	return awssecretsmanager.NewCfnSecret(resources.stack, jsii.String("postgres-secret"), &awssecretsmanager.CfnSecretProps{
		SecretString: jsii.String(secretString),
	})
}

// createSecretAccessRole lets the regional DMS principal read the secret on
// behalf of the source endpoint.
func createSecretAccessRole(resources *StackResources) awsiam.Role {
	return awsiam.NewRole(resources.stack, jsii.String("postgres-access-role"), &awsiam.RoleProps{
		AssumedBy: awsiam.NewServicePrincipal(
			jsii.String(fmt.Sprintf("dms.%s.amazonaws.com", *resources.stack.Region())),
			nil,
		),
		InlinePolicies: &map[string]awsiam.PolicyDocument{
			"AllowSecrets": awsiam.NewPolicyDocument(&awsiam.PolicyDocumentProps{
				Statements: &[]awsiam.PolicyStatement{
					awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
						Effect:    awsiam.Effect_ALLOW,
						Actions:   jsii.Strings("secretsmanager:GetSecretValue"),
						Resources: jsii.Strings(*resources.dbSecret.Ref()),
					}),
				},
			}),
		},
	})
}
