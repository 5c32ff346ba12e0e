package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/vburojevic/obcall/internal/call"
	"github.com/vburojevic/obcall/internal/domain"
	"github.com/vburojevic/obcall/internal/filter"
)

// WatchCmd polls the active session until the call reaches a terminal state.
type WatchCmd struct {
	Interval string `short:"i" help:"Polling interval (default from config, e.g. 5s)"`
	MaxPolls int    `help:"Stop after this many polls (0 = until the call ends)"`
	All      bool   `help:"Emit every poll, not only changed snapshots"`
}

// pollResult is one poll outcome handed from the poller to the emitter.
type pollResult struct {
	rec  *domain.Record
	warn error
}

// Run executes the watch command
func (c *WatchCmd) Run(globals *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interval, err := parseDuration("watch.interval", lo.CoalesceOrEmpty(c.Interval, globals.cfg().Watch.Interval), 5*time.Second)
	if err != nil {
		return outputDomainError(globals, err)
	}
	maxPolls := c.MaxPolls
	if maxPolls == 0 {
		maxPolls = globals.cfg().Watch.MaxPolls
	}

	svc, err := globals.newService(ctx, call.InitiatorOptions{})
	if err != nil {
		return outputDomainError(globals, err)
	}
	if _, err := svc.Current(); err != nil {
		return outputDomainError(globals, err)
	}

	log := globals.Logger()
	clk := globals.now()
	results := make(chan pollResult)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(results)
		ticker := clk.Ticker(interval)
		defer ticker.Stop()

		for polls := 1; ; polls++ {
			rec, err := svc.Refresh(gctx)
			var res pollResult
			switch {
			case rec != nil:
				res = pollResult{rec: rec, warn: err}
			case isRetryable(err):
				log.Debugw("refresh failed, will retry", "poll", polls, "error", err)
				res = pollResult{warn: err}
			default:
				return err
			}
			select {
			case results <- res:
			case <-gctx.Done():
				return nil
			}
			if rec != nil && rec.Terminal() {
				return nil
			}
			if maxPolls > 0 && polls >= maxPolls {
				return nil
			}
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})

	g.Go(func() error {
		changes := filter.NewChangeFilter(clk)
		for res := range results {
			if res.warn != nil {
				globals.Warn("refresh: %v", res.warn)
			}
			if res.rec == nil {
				continue
			}
			if check := changes.Check(res.rec); !check.ShouldEmit && !c.All {
				log.Debugw("snapshot unchanged", "repeats", check.Repeats)
				continue
			}
			headline := "Call in progress"
			if res.rec.Terminal() {
				headline = "Call ended"
			}
			if err := globals.emitRecord("watch", headline, res.rec); err != nil {
				return err
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return outputDomainError(globals, err)
	}
	return nil
}

func isRetryable(err error) bool {
	pe, ok := domain.AsProvider(err)
	return ok && pe.Retryable()
}
