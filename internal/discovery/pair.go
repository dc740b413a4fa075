package discovery

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pawfeeds/companion/internal/models"
)

// Pair groups raw probe results into logical feeder slots by hostname
// convention: `pawfeeds-cam-<core>` and `pawfeeds-cam-<core>-2` are the
// cameras for slots 1 and 2, `pawfeeds-std-<core>` is the shared feeder-brain
// serving both. Partial pairs are kept with the missing address left empty so
// callers can show partial availability. Output order is stable (by display
// name) for an unchanged input set.
func Pair(results []models.ProbeResult) []models.PairedDevice {
	type key struct {
		core string
		slot int
	}
	groups := make(map[key]*models.PairedDevice)

	ensure := func(core string, slot int) *models.PairedDevice {
		k := key{core, slot}
		if d, ok := groups[k]; ok {
			return d
		}
		d := &models.PairedDevice{
			DisplayName: fmt.Sprintf("Feeder %d (%s)", slot, core),
			Core:        core,
			SlotID:      slot,
		}
		groups[k] = d
		return d
	}

	// Cameras first: they fix which slots exist for a core.
	for _, r := range results {
		if reclassify(r) != models.RoleCamera {
			continue
		}
		core, slot := splitCameraHost(r.Hostname)
		if core == "" {
			continue
		}
		d := ensure(core, slot)
		d.CameraAddress = r.Address
		d.Online = d.Online || r.Connected
	}

	for _, r := range results {
		if reclassify(r) != models.RoleFeeder {
			continue
		}
		core := strings.TrimPrefix(r.Hostname, feederHostPrefix)
		if core == "" || core == r.Hostname {
			continue
		}

		attached := false
		for _, d := range groups {
			if d.Core != core {
				continue
			}
			d.FeederAddress = r.Address
			d.ContainerWeightGrams = r.ContainerWeightGrams
			d.Online = d.Online || r.Connected
			attached = true
		}
		if !attached {
			// Headless feeder-brain with no cameras: still a valid slot.
			d := ensure(core, 1)
			d.FeederAddress = r.Address
			d.ContainerWeightGrams = r.ContainerWeightGrams
			d.Online = r.Connected
		}
	}

	devices := make([]models.PairedDevice, 0, len(groups))
	for _, d := range groups {
		devices = append(devices, *d)
	}
	sort.Slice(devices, func(i, j int) bool {
		if devices[i].DisplayName != devices[j].DisplayName {
			return devices[i].DisplayName < devices[j].DisplayName
		}
		return devices[i].Core < devices[j].Core
	})
	return devices
}

// reclassify gives unknown-role hosts one more chance via the hostname
// heuristic before they are dropped.
func reclassify(r models.ProbeResult) models.DeviceRole {
	if r.Role != models.RoleUnknown {
		return r.Role
	}
	return classify("", r.Hostname)
}

// splitCameraHost extracts the core name and slot id from a camera hostname.
// The `-2` suffix selects slot 2; no suffix means slot 1.
func splitCameraHost(hostname string) (core string, slot int) {
	core = strings.TrimPrefix(hostname, cameraHostPrefix)
	if core == hostname {
		return "", 0
	}
	slot = 1
	if strings.HasSuffix(core, "-2") {
		core = strings.TrimSuffix(core, "-2")
		slot = 2
	}
	if core == "" {
		return "", 0
	}
	return core, slot
}
