package cli

import "fmt"

type SlotsCmd struct{}

func (c *SlotsCmd) Run(ctx *Context) error {
	slots, err := ctx.Store.Load()
	if err != nil {
		return err
	}

	for i, slot := range slots {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("%s %s\n", statusBadge(slot.Online), slot.Name)

		camera := slot.CameraAddress
		if camera == "" {
			camera = "unknown"
		}
		feeder := slot.FeederAddress
		if !slot.HasFeederAddress() {
			feeder = "unknown"
		}
		fmt.Printf("  camera: %s  feeder: %s\n", camera, feeder)
		if slot.DeviceID != "" {
			fmt.Printf("  device id: %s\n", slot.DeviceID)
		}
		if slot.ContainerWeightGrams > 0 {
			fmt.Printf("  container: %.0fg remaining\n", slot.ContainerWeightGrams)
		}

		for _, p := range slot.Profiles {
			fmt.Printf("  %s: %.1fkg, %d months, %d kcal/100g -> %dg/day\n",
				p.Name, p.WeightKg, p.AgeMonths, p.FoodKcalPer100g, p.DailyGrams)
			if p.PortionOverrideGrams > 0 {
				fmt.Printf("    manual portion override: %dg per feed\n", p.PortionOverrideGrams)
			}
			for _, s := range p.Schedules {
				state := "on"
				if !s.Enabled {
					state = "off"
				}
				fmt.Printf("    [%s] %s at %s (%s) - %dg\n",
					state, s.Name, s.TimeOfDay, formatDays(s.Days), s.PortionGrams)
			}
		}
	}
	return nil
}
