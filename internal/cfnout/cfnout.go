// Package cfnout resolves the deployed stack's outputs, which identify the
// resources the harness drives at run time.
package cfnout

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
)

// Output keys declared by the CDK stack.
const (
	keyTask   = "cdcTask"
	keyStream = "kinesisStream"
	keySecret = "dbSecret"
)

// API is the slice of the CloudFormation client we depend on.
type API interface {
	DescribeStacks(ctx context.Context, params *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
}

// Outputs holds the identifiers of the provisioned pipeline resources.
type Outputs struct {
	TaskARN   string
	StreamARN string
	SecretARN string
}

// Lookup finds stackName among the deployed stacks and extracts its outputs.
func Lookup(ctx context.Context, client API, stackName string) (Outputs, error) {
	res, err := client.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{})
	if err != nil {
		return Outputs{}, fmt.Errorf("describe stacks: %w", err)
	}

	for _, stack := range res.Stacks {
		if stack.StackName == nil || *stack.StackName != stackName {
			continue
		}

		values := make(map[string]string, len(stack.Outputs))
		for _, out := range stack.Outputs {
			if out.OutputKey != nil && out.OutputValue != nil {
				values[*out.OutputKey] = *out.OutputValue
			}
		}

		outputs := Outputs{
			TaskARN:   values[keyTask],
			StreamARN: values[keyStream],
			SecretARN: values[keySecret],
		}
		if outputs.TaskARN == "" || outputs.StreamARN == "" || outputs.SecretARN == "" {
			return Outputs{}, fmt.Errorf("stack %s is missing outputs (have %v)", stackName, stack.Outputs)
		}
		return outputs, nil
	}

	return Outputs{}, fmt.Errorf("stack %s not found", stackName)
}
