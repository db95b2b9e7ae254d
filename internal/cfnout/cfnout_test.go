package cfnout

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCfn struct {
	stacks []cfntypes.Stack
}

func (f *fakeCfn) DescribeStacks(context.Context, *cloudformation.DescribeStacksInput, ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error) {
	return &cloudformation.DescribeStacksOutput{Stacks: f.stacks}, nil
}

func stackWith(name string, outputs map[string]string) cfntypes.Stack {
	stack := cfntypes.Stack{StackName: aws.String(name)}
	for key, value := range outputs {
		stack.Outputs = append(stack.Outputs, cfntypes.Output{
			OutputKey:   aws.String(key),
			OutputValue: aws.String(value),
		})
	}
	return stack
}

func TestLookup(t *testing.T) {
	client := &fakeCfn{stacks: []cfntypes.Stack{
		stackWith("Other", map[string]string{"cdcTask": "wrong"}),
		stackWith("DmsCdcStack", map[string]string{
			"cdcTask":       "arn:task",
			"kinesisStream": "arn:stream",
			"dbSecret":      "arn:secret",
		}),
	}}

	outputs, err := Lookup(context.Background(), client, "DmsCdcStack")
	require.NoError(t, err)
	assert.Equal(t, Outputs{
		TaskARN:   "arn:task",
		StreamARN: "arn:stream",
		SecretARN: "arn:secret",
	}, outputs)
}

func TestLookupStackNotFound(t *testing.T) {
	client := &fakeCfn{stacks: []cfntypes.Stack{stackWith("Other", nil)}}

	_, err := Lookup(context.Background(), client, "DmsCdcStack")
	assert.ErrorContains(t, err, "not found")
}

func TestLookupMissingOutputs(t *testing.T) {
	client := &fakeCfn{stacks: []cfntypes.Stack{
		stackWith("DmsCdcStack", map[string]string{"cdcTask": "arn:task"}),
	}}

	_, err := Lookup(context.Background(), client, "DmsCdcStack")
	assert.ErrorContains(t, err, "missing outputs")
}
