package cli

import (
	"context"
	"fmt"

	"github.com/pawfeeds/companion/internal/dispatch"
	"github.com/pawfeeds/companion/internal/models"
)

type FeedCmd struct {
	Slot  int `arg:"" help:"Feeder slot id."`
	Grams int `short:"g" help:"Grams to dispense (default: the profile's per-feed portion)."`
}

func (c *FeedCmd) Run(ctx *Context) error {
	slots, err := ctx.Store.Load()
	if err != nil {
		return err
	}
	slot, err := findSlot(slots, c.Slot)
	if err != nil {
		return err
	}

	grams := c.Grams
	if grams <= 0 {
		grams = manualPortion(slot.Profiles)
	}
	if grams <= 0 {
		return fmt.Errorf("no portion configured for slot %d; pass --grams", c.Slot)
	}

	local := dispatch.NewLocal(0, ctx.Logger)
	transport := dispatch.Select(*slot, local, ctx.cloudTransport(ctx.Logger))
	if transport == nil {
		return fmt.Errorf("slot %d has no LAN address and no device id; run 'pawfeeds scan' or provision it first", c.Slot)
	}

	res := transport.Dispatch(context.Background(), dispatch.TargetFor(*slot), grams)

	if transport == local {
		slot.Online = res.OK
		if err := ctx.Store.Save(slots); err != nil {
			return err
		}
	}
	if !res.OK {
		return fmt.Errorf("feed failed: %s", res.Message)
	}
	fmt.Printf("Fed slot %d: %s\n", c.Slot, res.Message)
	return nil
}

// manualPortion picks the grams for a one-off feed: the first profile with a
// manual override wins, then the first enabled schedule's computed share.
func manualPortion(profiles []models.PetProfile) int {
	for _, p := range profiles {
		if p.PortionOverrideGrams > 0 {
			return p.PortionOverrideGrams
		}
	}
	for _, p := range profiles {
		for _, s := range p.Schedules {
			if s.Enabled && s.PortionGrams > 0 {
				return s.PortionGrams
			}
		}
	}
	return 0
}
