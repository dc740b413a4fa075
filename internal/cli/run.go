package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pawfeeds/companion/internal/dispatch"
	"github.com/pawfeeds/companion/internal/trigger"
)

type RunCmd struct {
	Interval time.Duration `short:"i" help:"Tick interval (default: registry setting)."`
}

func (c *RunCmd) Run(ctx *Context) error {
	interval := c.Interval
	if interval <= 0 {
		interval = time.Duration(ctx.Store.Settings().TickIntervalSec) * time.Second
	}

	engine := trigger.New(trigger.Config{
		Store:    ctx.Store,
		Local:    dispatch.NewLocal(0, ctx.Logger),
		Cloud:    ctx.cloudTransport(ctx.Logger),
		Interval: interval,
		Logger:   ctx.Logger,
	})

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine.Run(runCtx)
	return nil
}
