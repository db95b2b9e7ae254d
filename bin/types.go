package main

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awskinesis"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsrds"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssecretsmanager"

	"github.com/30Piraten/dms-cdc/config"
)

// StackResources bundles the constructs shared across the resource files.
type StackResources struct {
	stack         awscdk.Stack
	sinkMode      config.Mode
	vpc           awsec2.Vpc
	securityGroup awsec2.SecurityGroup
	dmsRole       awsiam.Role
	cluster       awsrds.DatabaseCluster
	dbSecret      awssecretsmanager.CfnSecret
	stream        awskinesis.Stream
}
