package cli

import (
	"context"

	"github.com/samber/lo"

	"github.com/vburojevic/obcall/internal/deploy"
	"github.com/vburojevic/obcall/internal/output"
)

// DeployCmd groups deployment subcommands.
type DeployCmd struct {
	Check DeployCheckCmd `cmd:"" help:"Report which deployment artifacts are present"`
	Apply DeployRunCmd   `cmd:"" name:"run" help:"Bootstrap and deploy the voice stack"`
}

// DeployCheckCmd lists artifact presence.
type DeployCheckCmd struct {
	Dir string `help:"Artifacts directory (default from config)"`
}

// Run executes the deploy check command
func (c *DeployCheckCmd) Run(globals *Globals) error {
	cfg := globals.cfg()
	artifacts := cfg.Deploy.Artifacts
	if len(artifacts) == 0 {
		artifacts = deploy.DefaultArtifacts
	}
	statuses := deploy.Check(lo.CoalesceOrEmpty(c.Dir, cfg.Deploy.ArtifactsDir, "."), artifacts)

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteArtifacts(statuses)
	}
	output.NewTextWriter(globals.Stdout).WriteArtifacts(statuses)
	return nil
}

// DeployRunCmd stages the stack and runs the CDK CLI.
type DeployRunCmd struct {
	Stack     string `help:"Stack name (default from config)"`
	Template  string `help:"CDK app directory (default from config)"`
	Artifacts string `help:"Artifacts directory (default from config)"`
	Profile   string `help:"AWS profile (default from config)"`
}

// Run executes the deploy run command
func (c *DeployRunCmd) Run(globals *Globals) error {
	cfg := globals.cfg()
	d := deploy.NewDeployer(globals.deployExecutor, cfg.Deploy.Binary, globals.Logger())

	res, err := d.Deploy(context.Background(), deploy.Request{
		TemplateDir:  lo.CoalesceOrEmpty(c.Template, cfg.Deploy.TemplateDir),
		ArtifactsDir: lo.CoalesceOrEmpty(c.Artifacts, cfg.Deploy.ArtifactsDir),
		Artifacts:    cfg.Deploy.Artifacts,
		StackName:    lo.CoalesceOrEmpty(c.Stack, cfg.Deploy.StackName),
		Region:       cfg.Connect.Region,
		Profile:      lo.CoalesceOrEmpty(c.Profile, cfg.Deploy.Profile),
	})
	if err != nil {
		return outputErrorCommon(globals, "DEPLOY_FAILED", err.Error())
	}

	if globals.Format == "ndjson" {
		if err := output.NewNDJSONWriter(globals.Stdout).WriteDeploy(res); err != nil {
			return err
		}
	} else {
		output.NewTextWriter(globals.Stdout).WriteDeploy(res)
	}
	if !res.Success {
		return outputErrorCommon(globals, "DEPLOY_FAILED", "deployment did not complete", "see stderr in the deploy output")
	}
	return nil
}
