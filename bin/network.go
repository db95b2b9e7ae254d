package main

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/jsii-runtime-go"
)

// Network resources
func createVpc(stack awscdk.Stack) awsec2.Vpc {
	return awsec2.NewVpc(stack, jsii.String("vpc"), &awsec2.VpcProps{
		MaxAzs:             jsii.Number(2),
		NatGateways:        jsii.Number(0),
		EnableDnsSupport:   jsii.Bool(true),
		EnableDnsHostnames: jsii.Bool(true),
		SubnetConfiguration: &[]*awsec2.SubnetConfiguration{
			{
				Name:       jsii.String("public"),
				CidrMask:   jsii.Number(24),
				SubnetType: awsec2.SubnetType_PUBLIC,
			},
		},
	})
}

func createSecurityGroup(stack awscdk.Stack, vpc awsec2.Vpc) awsec2.SecurityGroup {
	return awsec2.NewSecurityGroup(stack, jsii.String("sg"), &awsec2.SecurityGroupProps{
		Vpc:              vpc,
		Description:      jsii.String("Security group for the CDC sample"),
		AllowAllOutbound: jsii.Bool(true),
	})
}

func allowFromPort(securityGroup awsec2.SecurityGroup, port *float64) {
	securityGroup.Connections().AllowFrom(
		awsec2.Peer_AnyIpv4(),
		awsec2.Port_TcpRange(port, port),
		jsii.String("database access"),
	)
}
