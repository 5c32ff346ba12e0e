package cli

import (
	"context"
	"os"
	"strings"

	"github.com/samber/lo"

	"github.com/vburojevic/obcall/internal/call"
	"github.com/vburojevic/obcall/internal/domain"
	"github.com/vburojevic/obcall/internal/prompt"
)

// CallCmd places an outbound call and replaces the active session.
type CallCmd struct {
	Number      string   `short:"n" required:"" help:"Destination phone number"`
	Name        string   `help:"Caller label passed to the contact flow (default from config)"`
	Instance    string   `help:"Contact-center instance ID (default from config)"`
	Flow        string   `help:"Contact flow ID (default from config)"`
	Source      string   `help:"Source phone number (optional)"`
	Attr        []string `short:"A" help:"Extra contact attribute KEY=VALUE (repeatable)"`
	PhonePolicy string   `help:"Destination number policy: e164, exact:<n> or max:<n> (default from config)"`
	Prompt      string   `help:"Bot prompt to install on the call handler before dialing"`
	PromptFile  string   `help:"Read the bot prompt from a file"`
	LambdaARN   string   `name:"lambda-arn" help:"Call handler function ARN (default from config)"`
}

// Run executes the call command
func (c *CallCmd) Run(globals *Globals) error {
	ctx := context.Background()
	cfg := globals.cfg()

	policy := lo.CoalesceOrEmpty(c.PhonePolicy, cfg.Phone.Policy)
	validator, err := call.ParsePhonePolicy(policy, cfg.Phone.Length)
	if err != nil {
		return outputDomainError(globals, &domain.ValidationError{Field: "phone_policy", Message: err.Error()})
	}
	attrs, err := parseAttributes(cfg.Connect.Attributes, c.Attr)
	if err != nil {
		return outputDomainError(globals, err)
	}

	svc, err := globals.newService(ctx, call.InitiatorOptions{Validator: validator, Attributes: attrs})
	if err != nil {
		return outputDomainError(globals, err)
	}

	req := call.InitiateRequest{
		DestinationNumber: strings.TrimSpace(c.Number),
		CallerLabel:       lo.CoalesceOrEmpty(c.Name, cfg.Connect.CallerLabel),
		FlowID:            lo.CoalesceOrEmpty(c.Flow, cfg.Connect.FlowID),
		InstanceID:        lo.CoalesceOrEmpty(c.Instance, cfg.Connect.InstanceID),
		SourceNumber:      lo.CoalesceOrEmpty(c.Source, cfg.Connect.SourceNumber),
	}
	// the remote prompt is only touched for a request that will be dialed
	if err := svc.Validate(req); err != nil {
		return outputDomainError(globals, err)
	}
	if err := c.installPrompt(ctx, globals); err != nil {
		globals.Warn("prompt not updated, dialing with the current one: %v", err)
	}

	rec, err := svc.Call(ctx, req)
	if rec == nil && err != nil {
		return outputDomainError(globals, err)
	}
	if err != nil {
		globals.Warn("call placed but session state was not saved: %v", err)
	}
	return globals.emitRecord("call", "Call placed", rec)
}

func (c *CallCmd) installPrompt(ctx context.Context, globals *Globals) error {
	text := c.Prompt
	if c.PromptFile != "" {
		data, err := os.ReadFile(c.PromptFile)
		if err != nil {
			return err
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	arn := lo.CoalesceOrEmpty(c.LambdaARN, globals.cfg().Prompt.LambdaARN)
	if arn == "" {
		return &domain.ValidationError{Field: "lambda_arn", Message: "is required to update the prompt"}
	}
	setter, err := globals.promptUpdater(ctx)
	if err != nil {
		return err
	}
	envVar := lo.CoalesceOrEmpty(globals.cfg().Prompt.EnvVar, prompt.DefaultEnvVar)
	return setter.SetVariable(ctx, arn, envVar, text)
}
