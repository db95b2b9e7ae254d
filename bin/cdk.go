package main

import (
	"log"
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/30Piraten/dms-cdc/config"
)

type DmsCdcStackProps struct {
	awscdk.StackProps
}

// NewDmsCdcStack declares the whole pipeline: network, source database,
// credentials secret, target stream and the CDC replication task.
func NewDmsCdcStack(scope constructs.Construct, id string, props *DmsCdcStackProps) awscdk.Stack {
	var sprops awscdk.StackProps
	if props != nil {
		sprops = props.StackProps
	}
	stack := awscdk.NewStack(scope, &id, &sprops)

	sinkMode, err := config.ParseMode(os.Getenv("SINK_MODE"))
	if err != nil {
		log.Fatalf("invalid SINK_MODE: %v", err)
	}

	resources := &StackResources{stack: stack, sinkMode: sinkMode}
	resources.vpc = createVpc(stack)
	resources.securityGroup = createSecurityGroup(stack, resources.vpc)

	// DMS reads the stream grant and the target endpoint through this role.
	resources.dmsRole = awsiam.NewRole(stack, jsii.String("SuperRole"), &awsiam.RoleProps{
		AssumedBy: awsiam.NewServicePrincipal(jsii.String("dms.amazonaws.com"), nil),
	})

	resources.cluster = createAuroraCluster(resources)
	dbPort := resources.cluster.ClusterEndpoint().Port()
	allowFromPort(resources.securityGroup, dbPort)

	resources.dbSecret = createDatabaseSecret(resources)
	secretAccessRole := createSecretAccessRole(resources)

	sourceEndpoint := createSourceEndpoint(resources, secretAccessRole)

	resources.stream = createTargetStream(resources)
	targetEndpoint := createTargetEndpoint(resources)

	replicationInstance := createReplicationInstance(resources)
	cdcTask := createReplicationTask(resources, "cdc-task", replicationInstance, sourceEndpoint, targetEndpoint)

	createStackOutputs(resources, cdcTask)

	return stack
}

func main() {
	defer jsii.Close()

	stackName := os.Getenv("STACK_NAME")
	if stackName == "" {
		stackName = "DmsCdcStack"
	}

	app := awscdk.NewApp(nil)
	NewDmsCdcStack(app, stackName, &DmsCdcStackProps{
		awscdk.StackProps{
			Env: env(),
		},
	})

	app.Synth(nil)
}

func env() *awscdk.Environment {
	return &awscdk.Environment{
		Account: jsii.String(os.Getenv("ACCOUNT_ID")),
		Region:  jsii.String(os.Getenv("ACCOUNT_REGION")),
	}
}
