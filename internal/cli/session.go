package cli

import (
	"context"

	"github.com/vburojevic/obcall/internal/call"
	"github.com/vburojevic/obcall/internal/output"
)

// RefreshCmd reconciles the active session once.
type RefreshCmd struct{}

// Run executes the refresh command
func (c *RefreshCmd) Run(globals *Globals) error {
	ctx := context.Background()
	svc, err := globals.newService(ctx, call.InitiatorOptions{})
	if err != nil {
		return outputDomainError(globals, err)
	}
	rec, err := svc.Refresh(ctx)
	if rec == nil && err != nil {
		return outputDomainError(globals, err)
	}
	if err != nil {
		globals.Warn("session refreshed but state was not saved: %v", err)
	}
	headline := "Call in progress"
	if rec.Terminal() {
		headline = "Call ended"
	}
	return globals.emitRecord("refresh", headline, rec)
}

// ShowCmd prints the active session as last reconciled.
type ShowCmd struct {
	Remote bool `help:"Print the provider's current contact detail instead, without updating the session"`
}

// Run executes the show command
func (c *ShowCmd) Run(globals *Globals) error {
	ctx := context.Background()
	svc, err := globals.newService(ctx, call.InitiatorOptions{})
	if err != nil {
		return outputDomainError(globals, err)
	}
	if c.Remote {
		return c.showRemote(ctx, globals, svc)
	}
	rec, err := svc.Current()
	if err != nil {
		return outputDomainError(globals, err)
	}
	return globals.emitRecord("show", "Active session", rec)
}

func (c *ShowCmd) showRemote(ctx context.Context, globals *Globals, svc *call.Service) error {
	contact, err := svc.Describe(ctx)
	if err != nil {
		return outputDomainError(globals, err)
	}
	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteContact(contact)
	}
	tf, err := globals.timeFormat()
	if err != nil {
		return outputDomainError(globals, err)
	}
	return output.NewTextWriter(globals.Stdout).WriteContact(contact, tf)
}
