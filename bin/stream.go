package main

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awskinesis"
	"github.com/aws/jsii-runtime-go"
)

// Target stream: a single shard keeps the captured events totally ordered,
// which is what the harness's checkpointed reads rely on.
func createTargetStream(resources *StackResources) awskinesis.Stream {
	stream := awskinesis.NewStream(resources.stack, jsii.String("TargetStream"), &awskinesis.StreamProps{
		ShardCount:      jsii.Number(1),
		RetentionPeriod: awscdk.Duration_Hours(jsii.Number(24)),
	})
	stream.GrantReadWrite(resources.dmsRole)
	stream.ApplyRemovalPolicy(awscdk.RemovalPolicy_DESTROY)
	return stream
}
