package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/pawfeeds/companion/internal/discovery"
	"github.com/pawfeeds/companion/internal/netinfo"
	"github.com/pawfeeds/companion/internal/registry"
)

type ScanCmd struct {
	Timeout     time.Duration `short:"t" help:"Per-host probe timeout (default: registry setting)."`
	Concurrency int           `short:"c" help:"Max in-flight probes (default: registry setting)."`
	Any         bool          `help:"Fast best-effort sweep: list every address answering /status, no pairing."`
}

func (c *ScanCmd) Run(ctx *Context) error {
	local := netinfo.LocalIPv4()
	if local == "" {
		fmt.Println("No usable network interface found; is Wi-Fi up?")
		return nil
	}

	settings := ctx.Store.Settings()
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = time.Duration(settings.ProbeTimeoutSec) * time.Second
		if c.Any {
			// The any-sweep is a quick look, not a pairing pass.
			timeout = 900 * time.Millisecond
		}
	}
	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = settings.ScanConcurrency
	}

	// Ctrl-C stops the sweep and keeps whatever answered so far.
	scanCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	prober := discovery.NewProber(timeout, concurrency, ctx.Logger)

	if c.Any {
		fmt.Printf("Sweeping %s/24 for HTTP responders...\n", local)
		hosts := prober.ScanAny(scanCtx, local)
		if len(hosts) == 0 {
			fmt.Println("No responding hosts found.")
			return nil
		}
		for _, h := range hosts {
			fmt.Printf("  %s\n", h)
		}
		return nil
	}

	fmt.Printf("Scanning %s/24 for feeders...\n", local)
	devices := discovery.Pair(prober.Scan(scanCtx, local))

	slots, err := ctx.Store.Load()
	if err != nil {
		return err
	}
	merged := registry.MergeScan(slots, devices)
	if err := ctx.Store.Save(merged); err != nil {
		return err
	}

	if len(devices) == 0 {
		fmt.Println("No feeders found on this network.")
		return nil
	}

	fmt.Printf("Found %d feeder(s):\n", len(devices))
	for _, d := range devices {
		fmt.Printf("  %s %s\n", statusBadge(d.Online), d.DisplayName)
		if d.CameraAddress != "" {
			fmt.Printf("      camera: %s\n", d.CameraAddress)
		}
		if d.FeederAddress != "" {
			fmt.Printf("      feeder: %s\n", d.FeederAddress)
		}
		if d.ContainerWeightGrams > 0 {
			fmt.Printf("      container: %.0fg remaining\n", d.ContainerWeightGrams)
		}
	}
	return nil
}
