package main

import (
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

type LadderStackProps struct {
	awscdk.StackProps
}

// NewLadderStack deploys the API as a single Lambda behind API Gateway. The
// binary is expected at ../dist/bootstrap, built for linux/arm64.
func NewLadderStack(scope constructs.Construct, id string, props *LadderStackProps) awscdk.Stack {
	var stackProps awscdk.StackProps
	if props != nil {
		stackProps = props.StackProps
	}

	stack := awscdk.NewStack(scope, &id, &stackProps)

	lambdaFn := awslambda.NewFunction(stack, jsii.String("LadderApi"), &awslambda.FunctionProps{
		Runtime:      awslambda.Runtime_PROVIDED_AL2023(),
		Architecture: awslambda.Architecture_ARM_64(),
		Handler:      jsii.String("bootstrap"),
		Code:         awslambda.Code_FromAsset(jsii.String("../dist"), nil),
		MemorySize:   jsii.Number(256),
		Timeout:      awscdk.Duration_Seconds(jsii.Number(10)),
		Environment: &map[string]*string{
			"APP":                 jsii.String("prod"),
			"LOG_LEVEL":           jsii.String(envOr("LOG_LEVEL", "info")),
			"POSTGRES_DSN":        jsii.String(os.Getenv("POSTGRES_DSN")),
			"ADMIN_PASSWORD_HASH": jsii.String(os.Getenv("ADMIN_PASSWORD_HASH")),
			"CORS_ORIGINS":        jsii.String(envOr("CORS_ORIGINS", "*")),
		},
	})

	api := awsapigateway.NewLambdaRestApi(stack, jsii.String("LadderApiGateway"), &awsapigateway.LambdaRestApiProps{
		Handler: lambdaFn,
	})

	awscdk.NewCfnOutput(stack, jsii.String("ApiUrl"), &awscdk.CfnOutputProps{Value: api.Url()})

	return stack
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	app := awscdk.NewApp(nil)
	NewLadderStack(app, "ClubLadderStack", &LadderStackProps{})
	app.Synth(nil)
}
