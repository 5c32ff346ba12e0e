// Package prompt updates the bot prompt held in the call handler's
// environment.
package prompt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"go.uber.org/zap"
)

// DefaultEnvVar is the variable the call handler reads its prompt from.
const DefaultEnvVar = "Prompt"

type lambdaAPI interface {
	GetFunctionConfiguration(ctx context.Context, params *lambda.GetFunctionConfigurationInput, optFns ...func(*lambda.Options)) (*lambda.GetFunctionConfigurationOutput, error)
	UpdateFunctionConfiguration(ctx context.Context, params *lambda.UpdateFunctionConfigurationInput, optFns ...func(*lambda.Options)) (*lambda.UpdateFunctionConfigurationOutput, error)
}

// Updater sets environment variables on a Lambda function.
type Updater struct {
	client  lambdaAPI
	timeout time.Duration
	log     *zap.SugaredLogger
}

// NewUpdater loads the default AWS configuration for region.
func NewUpdater(ctx context.Context, region string, timeout time.Duration, log *zap.SugaredLogger) (*Updater, error) {
	if strings.TrimSpace(region) == "" {
		return nil, fmt.Errorf("missing region")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newUpdater(lambda.NewFromConfig(cfg), timeout, log), nil
}

func newUpdater(client lambdaAPI, timeout time.Duration, log *zap.SugaredLogger) *Updater {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Updater{client: client, timeout: timeout, log: log}
}

// SetVariable reads the function's current environment, sets name to value
// and writes the whole environment back. Other variables are preserved.
func (u *Updater) SetVariable(ctx context.Context, functionARN, name, value string) error {
	if strings.TrimSpace(functionARN) == "" {
		return fmt.Errorf("missing function arn")
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("missing environment variable name")
	}
	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	current, err := u.client.GetFunctionConfiguration(ctx, &lambda.GetFunctionConfigurationInput{
		FunctionName: aws.String(functionARN),
	})
	if err != nil {
		return fmt.Errorf("get function configuration: %w", err)
	}

	vars := map[string]string{}
	if current.Environment != nil {
		for k, v := range current.Environment.Variables {
			vars[k] = v
		}
	}
	vars[name] = value

	_, err = u.client.UpdateFunctionConfiguration(ctx, &lambda.UpdateFunctionConfigurationInput{
		FunctionName: aws.String(functionARN),
		Environment:  &lambdatypes.Environment{Variables: vars},
	})
	if err != nil {
		return fmt.Errorf("update function configuration: %w", err)
	}
	u.log.Debugw("lambda environment updated", "function", functionARN, "variable", name, "bytes", len(value))
	return nil
}
