package registry

import "github.com/pawfeeds/companion/internal/models"

// DefaultSlots is the built-in registry used when no store exists yet or the
// persisted one cannot be read: two empty slots, one default profile each.
func DefaultSlots() []models.FeederSlot {
	return []models.FeederSlot{
		{
			ID:       1,
			Name:     "Feeder 1",
			Profiles: []models.PetProfile{DefaultProfile("Pet A")},
		},
		{
			ID:       2,
			Name:     "Feeder 2",
			Profiles: []models.PetProfile{DefaultProfile("Pet B")},
		},
	}
}

func DefaultProfile(name string) models.PetProfile {
	return models.PetProfile{
		Name:            name,
		AgeMonths:       12,
		WeightKg:        10,
		FoodKcalPer100g: 350,
		SexStatus:       models.SexNeutered,
		ActivityLevel:   models.ActivityNormal,
	}
}

func DefaultSettings() Settings {
	return Settings{
		TickIntervalSec: 30,
		ProbeTimeoutSec: 3,
		ScanConcurrency: 32,
	}
}

// repairSlots fixes legacy records in place: records persisted before ids
// existed get sequential ones, and slots stripped of every profile get a
// default back. Reports whether anything changed.
func repairSlots(slots []models.FeederSlot) bool {
	changed := false
	for i := range slots {
		if slots[i].ID == 0 {
			slots[i].ID = i + 1
			changed = true
		}
		if len(slots[i].Profiles) == 0 {
			slots[i].Profiles = []models.PetProfile{DefaultProfile("Default Profile")}
			changed = true
		}
	}
	return changed
}
