package main

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsdms"
	"github.com/aws/jsii-runtime-go"
)

// The harness discovers the deployed resources through these outputs.
func createStackOutputs(resources *StackResources, cdcTask awsdms.CfnReplicationTask) {
	awscdk.NewCfnOutput(resources.stack, jsii.String("cdcTask"), &awscdk.CfnOutputProps{
		Value: cdcTask.Ref(),
	})

	awscdk.NewCfnOutput(resources.stack, jsii.String("kinesisStream"), &awscdk.CfnOutputProps{
		Value: resources.stream.StreamArn(),
	})

	awscdk.NewCfnOutput(resources.stack, jsii.String("dbSecret"), &awscdk.CfnOutputProps{
		Value: resources.dbSecret.Ref(),
	})
}
