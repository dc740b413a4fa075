package registry

import (
	"fmt"
	"sort"

	"github.com/pawfeeds/companion/internal/models"
)

// MergeScan folds paired scan results into the known slots, matching by slot
// id. Every slot starts the cycle offline; only slots seen in this scan come
// back online. Devices without a matching slot are added as new slots with a
// default profile. The input slice is not modified.
func MergeScan(slots []models.FeederSlot, devices []models.PairedDevice) []models.FeederSlot {
	merged := make([]models.FeederSlot, len(slots))
	copy(merged, slots)

	for i := range merged {
		merged[i].Online = false
	}

	for _, d := range devices {
		idx := -1
		for i := range merged {
			if merged[i].ID == d.SlotID {
				idx = i
				break
			}
		}
		if idx == -1 {
			merged = append(merged, models.FeederSlot{
				ID:       d.SlotID,
				Name:     d.DisplayName,
				Profiles: []models.PetProfile{DefaultProfile(fmt.Sprintf("Pet %d", d.SlotID))},
			})
			idx = len(merged) - 1
		}

		slot := &merged[idx]
		if d.CameraAddress != "" {
			slot.CameraAddress = d.CameraAddress
		}
		if d.FeederAddress != "" {
			slot.FeederAddress = d.FeederAddress
		}
		if d.ContainerWeightGrams != 0 {
			slot.ContainerWeightGrams = d.ContainerWeightGrams
		}
		slot.Online = d.Online
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].ID < merged[j].ID })
	return merged
}
