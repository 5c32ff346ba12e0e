package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vburojevic/obcall/internal/call"
	"github.com/vburojevic/obcall/internal/domain"
	"github.com/vburojevic/obcall/internal/prompt"
	"github.com/vburojevic/obcall/internal/provider"
	"github.com/vburojevic/obcall/internal/session"
)

// variableSetter updates one environment variable of a remote function.
type variableSetter interface {
	SetVariable(ctx context.Context, functionARN, name, value string) error
}

func (g *Globals) timeFormat() (domain.TimeFormat, error) {
	return domain.ParseTimeFormat(g.cfg().Timezone)
}

func (g *Globals) providerClient(ctx context.Context) (provider.Client, error) {
	if g.client != nil {
		return g.client, nil
	}
	name := g.Provider
	if name == "" {
		name = g.cfg().Provider
	}
	switch name {
	case "dev":
		g.client = provider.NewDev(g.now())
	case "connect", "":
		c, err := provider.NewConnect(ctx, g.cfg().Connect.Region, g.cfg().Connect.DetectionAttribute)
		if err != nil {
			return nil, err
		}
		g.client = c
	default:
		return nil, &domain.ValidationError{Field: "provider", Message: fmt.Sprintf("unknown provider %q", name)}
	}
	return g.client, nil
}

func (g *Globals) promptUpdater(ctx context.Context) (variableSetter, error) {
	if g.promptSetter != nil {
		return g.promptSetter, nil
	}
	timeout, err := parseDuration("timeouts.prompt", g.cfg().Timeouts.Prompt, 30*time.Second)
	if err != nil {
		return nil, err
	}
	updater, err := prompt.NewUpdater(ctx, g.cfg().Connect.Region, timeout, g.Logger())
	if err != nil {
		return nil, err
	}
	g.promptSetter = updater
	return updater, nil
}

func (g *Globals) statePath() (string, error) {
	for _, p := range []string{g.StateFile, g.cfg().StateFile} {
		if strings.TrimSpace(p) != "" {
			return p, nil
		}
	}
	return session.DefaultStatePath()
}

// newService loads the persisted session and wires the call workflow so
// every store write is saved back to the state file. A refresh is only
// saved while the file still holds the session it started from.
func (g *Globals) newService(ctx context.Context, opts call.InitiatorOptions) (*call.Service, error) {
	tf, err := g.timeFormat()
	if err != nil {
		return nil, &domain.ValidationError{Field: "timezone", Message: err.Error()}
	}
	client, err := g.providerClient(ctx)
	if err != nil {
		return nil, err
	}
	initTimeout, err := parseDuration("timeouts.initiate", g.cfg().Timeouts.Initiate, 10*time.Second)
	if err != nil {
		return nil, err
	}
	describeTimeout, err := parseDuration("timeouts.describe", g.cfg().Timeouts.Describe, 10*time.Second)
	if err != nil {
		return nil, err
	}
	path, err := g.statePath()
	if err != nil {
		return nil, err
	}
	store, err := session.LoadState(path)
	if err != nil {
		return nil, err
	}

	log := g.Logger()
	opts.Timeout = initTimeout
	opts.TimeFormat = tf
	opts.Clock = g.now()
	opts.Logger = log

	svc := call.NewService(
		call.NewInitiator(client, opts),
		call.NewReconciler(client, describeTimeout, tf, log),
		store,
		log,
	)
	svc.Persist = session.StateFile{Path: path}
	return svc, nil
}

func parseDuration(field, value string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, &domain.ValidationError{Field: field, Message: fmt.Sprintf("invalid duration %q", value)}
	}
	return d, nil
}

// parseAttributes turns KEY=VALUE pairs into a map; later pairs win.
func parseAttributes(pairs ...[]string) (map[string]string, error) {
	attrs := map[string]string{}
	for _, list := range pairs {
		for _, p := range list {
			key, value, ok := strings.Cut(p, "=")
			key = strings.TrimSpace(key)
			if !ok || key == "" {
				return nil, &domain.ValidationError{Field: "attribute", Message: fmt.Sprintf("expected KEY=VALUE, got %q", p)}
			}
			attrs[key] = value
		}
	}
	return attrs, nil
}
