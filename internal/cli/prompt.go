package cli

import (
	"context"
	"os"
	"strings"

	"github.com/samber/lo"

	"github.com/vburojevic/obcall/internal/domain"
	"github.com/vburojevic/obcall/internal/output"
	"github.com/vburojevic/obcall/internal/prompt"
)

// PromptCmd groups prompt subcommands.
type PromptCmd struct {
	Set PromptSetCmd `cmd:"" help:"Install a bot prompt on the call handler"`
}

// PromptSetCmd writes a prompt into the call handler's environment.
type PromptSetCmd struct {
	Text      string `arg:"" optional:"" help:"Prompt text"`
	File      string `help:"Read the prompt from a file"`
	LambdaARN string `name:"lambda-arn" help:"Call handler function ARN (default from config)"`
	EnvVar    string `help:"Environment variable holding the prompt (default from config)"`
}

// Run executes the prompt set command
func (c *PromptSetCmd) Run(globals *Globals) error {
	ctx := context.Background()
	text := c.Text
	if c.File != "" {
		data, err := os.ReadFile(c.File)
		if err != nil {
			return outputErrorCommon(globals, "PROMPT_READ_FAILED", err.Error())
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return outputDomainError(globals, &domain.ValidationError{Field: "prompt", Message: "is required"})
	}
	arn := lo.CoalesceOrEmpty(c.LambdaARN, globals.cfg().Prompt.LambdaARN)
	if arn == "" {
		return outputDomainError(globals, &domain.ValidationError{Field: "lambda_arn", Message: "is required"})
	}
	envVar := lo.CoalesceOrEmpty(c.EnvVar, globals.cfg().Prompt.EnvVar, prompt.DefaultEnvVar)

	setter, err := globals.promptUpdater(ctx)
	if err != nil {
		return outputErrorCommon(globals, "PROMPT_UPDATE_FAILED", err.Error())
	}
	if err := setter.SetVariable(ctx, arn, envVar, text); err != nil {
		return outputErrorCommon(globals, "PROMPT_UPDATE_FAILED", err.Error(), "check the function ARN and your AWS credentials")
	}

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteInfo("prompt updated: " + envVar)
	}
	output.NewTextWriter(globals.Stdout).WriteSuccess("Prompt updated (" + envVar + ")")
	return nil
}
