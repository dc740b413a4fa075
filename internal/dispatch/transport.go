package dispatch

import (
	"context"

	"github.com/pawfeeds/companion/internal/models"
)

// Target identifies where a feed command should land.
type Target struct {
	SlotID        int
	FeederAddress string
	DeviceID      string
}

// Result is the outcome of a dispatch attempt. Transports convert every
// transport-level failure into OK=false plus a human-readable message; they
// never surface raw network errors to callers.
type Result struct {
	OK      bool
	Message string
}

// Transport delivers a feed command to a feeder slot.
type Transport interface {
	Dispatch(ctx context.Context, target Target, grams int) Result
}

func TargetFor(slot models.FeederSlot) Target {
	return Target{
		SlotID:        slot.ID,
		FeederAddress: slot.FeederAddress,
		DeviceID:      slot.DeviceID,
	}
}

// Select picks the transport for a slot: local when a usable LAN address is
// known, the cloud relay when only a device id is, nil when neither.
func Select(slot models.FeederSlot, local, cloud Transport) Transport {
	if slot.HasFeederAddress() && local != nil {
		return local
	}
	if slot.DeviceID != "" && cloud != nil {
		return cloud
	}
	return nil
}
