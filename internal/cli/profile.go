package cli

import (
	"fmt"

	"github.com/pawfeeds/companion/internal/models"
	"github.com/pawfeeds/companion/internal/portion"
)

type ProfileSetCmd struct {
	Slot     int     `arg:"" help:"Feeder slot id."`
	Profile  string  `short:"p" help:"Profile name (default: the slot's first profile)."`
	Name     string  `help:"Rename the profile."`
	Age      int     `help:"Age in months." default:"-1"`
	Weight   float64 `help:"Weight in kilograms." default:"-1"`
	Kcal     int     `help:"Food energy density, kcal per 100g." default:"-1"`
	Sex      string  `help:"Sex status (neutered|male|female)."`
	Activity string  `help:"Activity level (sedentary|normal|active)."`
	Override int     `help:"Manual per-feed grams; 0 clears the override." default:"-1"`
}

func (c *ProfileSetCmd) Validate() error {
	switch models.SexStatus(c.Sex) {
	case "", models.SexNeutered, models.SexMale, models.SexFemale:
	default:
		return fmt.Errorf("invalid sex status: %s", c.Sex)
	}
	switch models.ActivityLevel(c.Activity) {
	case "", models.ActivitySedentary, models.ActivityNormal, models.ActivityActive:
	default:
		return fmt.Errorf("invalid activity level: %s", c.Activity)
	}
	return nil
}

func (c *ProfileSetCmd) Run(ctx *Context) error {
	slots, err := ctx.Store.Load()
	if err != nil {
		return err
	}
	slot, err := findSlot(slots, c.Slot)
	if err != nil {
		return err
	}
	profile, err := findProfile(slot, c.Profile)
	if err != nil {
		return err
	}

	if c.Name != "" {
		profile.Name = c.Name
	}
	if c.Age >= 0 {
		profile.AgeMonths = c.Age
	}
	if c.Weight >= 0 {
		profile.WeightKg = c.Weight
	}
	if c.Kcal >= 0 {
		profile.FoodKcalPer100g = c.Kcal
	}
	if c.Sex != "" {
		profile.SexStatus = models.SexStatus(c.Sex)
	}
	if c.Activity != "" {
		profile.ActivityLevel = models.ActivityLevel(c.Activity)
	}
	if c.Override >= 0 {
		profile.PortionOverrideGrams = c.Override
	}

	portion.Recalculate(profile)

	if err := ctx.Store.Save(slots); err != nil {
		return err
	}

	fmt.Printf("Updated %s: %dg per day\n", profile.Name, profile.DailyGrams)
	if profile.PortionOverrideGrams > 0 {
		fmt.Printf("Manual portion override: %dg per feed\n", profile.PortionOverrideGrams)
	} else {
		for _, s := range profile.Schedules {
			if s.Enabled {
				fmt.Printf("  %s at %s: %dg\n", s.Name, s.TimeOfDay, s.PortionGrams)
			}
		}
	}
	return nil
}
