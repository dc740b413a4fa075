package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pawfeeds/companion/internal/models"
	"github.com/pawfeeds/companion/internal/portion"
)

type ScheduleAddCmd struct {
	Slot     int    `arg:"" help:"Feeder slot id."`
	Time     string `arg:"" help:"Time of day (HH:MM)."`
	Name     string `short:"n" help:"Schedule name." default:"Meal"`
	Days     string `short:"w" help:"Comma-separated weekdays, or 'daily'." default:"daily"`
	Profile  string `short:"p" help:"Profile name (default: the slot's first profile)."`
	Disabled bool   `help:"Create the schedule switched off."`
}

func (c *ScheduleAddCmd) Validate() error {
	if _, err := time.Parse("15:04", c.Time); err != nil {
		return fmt.Errorf("invalid time %q, want HH:MM", c.Time)
	}
	return nil
}

func (c *ScheduleAddCmd) Run(ctx *Context) error {
	days, err := parseWeekdays(c.Days)
	if err != nil {
		return err
	}

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

	sched := models.FeedingSchedule{
		ID:        uuid.New().String(),
		Name:      c.Name,
		TimeOfDay: c.Time,
		Enabled:   !c.Disabled,
		Days:      days,
	}
	profile.Schedules = append(profile.Schedules, sched)
	portion.Recalculate(profile)

	if err := ctx.Store.Save(slots); err != nil {
		return err
	}

	fmt.Printf("Added schedule: %s at %s (%s) for %s (ID: %s)\n",
		c.Name, c.Time, formatDays(days), profile.Name, sched.ID)
	for _, s := range profile.Schedules {
		if s.ID == sched.ID {
			fmt.Printf("Portion per feed: %dg\n", profile.PortionPerFeed(s))
		}
	}
	return nil
}

type ScheduleListCmd struct {
	Slot int `arg:"" optional:"" help:"Feeder slot id (default: all slots)."`
}

func (c *ScheduleListCmd) Run(ctx *Context) error {
	slots, err := ctx.Store.Load()
	if err != nil {
		return err
	}

	found := false
	for _, slot := range slots {
		if c.Slot != 0 && slot.ID != c.Slot {
			continue
		}
		for _, p := range slot.Profiles {
			for _, s := range p.Schedules {
				found = true
				state := "on"
				if !s.Enabled {
					state = "off"
				}
				fmt.Printf("[%s] slot %d / %s: %s at %s (%s) - %dg  %s\n",
					state, slot.ID, p.Name, s.Name, s.TimeOfDay,
					formatDays(s.Days), p.PortionPerFeed(s), s.ID)
			}
		}
	}
	if !found {
		fmt.Println("No schedules found")
	}
	return nil
}

type ScheduleToggleCmd struct {
	Slot int    `arg:"" help:"Feeder slot id."`
	ID   string `arg:"" help:"Schedule id (a unique prefix is enough)."`
}

func (c *ScheduleToggleCmd) Run(ctx *Context) error {
	slots, err := ctx.Store.Load()
	if err != nil {
		return err
	}
	slot, err := findSlot(slots, c.Slot)
	if err != nil {
		return err
	}
	profile, sched, err := findSchedule(slot, c.ID)
	if err != nil {
		return err
	}

	sched.Enabled = !sched.Enabled
	portion.Recalculate(profile)

	if err := ctx.Store.Save(slots); err != nil {
		return err
	}

	state := "enabled"
	if !sched.Enabled {
		state = "disabled"
	}
	fmt.Printf("Schedule %s at %s is now %s\n", sched.Name, sched.TimeOfDay, state)
	return nil
}

type ScheduleRemoveCmd struct {
	Slot int    `arg:"" help:"Feeder slot id."`
	ID   string `arg:"" help:"Schedule id (a unique prefix is enough)."`
}

func (c *ScheduleRemoveCmd) Run(ctx *Context) error {
	slots, err := ctx.Store.Load()
	if err != nil {
		return err
	}
	slot, err := findSlot(slots, c.Slot)
	if err != nil {
		return err
	}
	profile, sched, err := findSchedule(slot, c.ID)
	if err != nil {
		return err
	}

	name, timeOfDay := sched.Name, sched.TimeOfDay
	kept := profile.Schedules[:0]
	for _, s := range profile.Schedules {
		if s.ID != sched.ID {
			kept = append(kept, s)
		}
	}
	profile.Schedules = kept
	portion.Recalculate(profile)

	if err := ctx.Store.Save(slots); err != nil {
		return err
	}

	fmt.Printf("Removed schedule: %s at %s\n", name, timeOfDay)
	return nil
}

// findSchedule resolves a schedule within a slot by id prefix, erroring when
// the prefix matches nothing or more than one schedule.
func findSchedule(slot *models.FeederSlot, idPrefix string) (*models.PetProfile, *models.FeedingSchedule, error) {
	var profile *models.PetProfile
	var sched *models.FeedingSchedule
	matches := 0

	for pi := range slot.Profiles {
		p := &slot.Profiles[pi]
		for si := range p.Schedules {
			if strings.HasPrefix(p.Schedules[si].ID, idPrefix) {
				profile = p
				sched = &p.Schedules[si]
				matches++
			}
		}
	}

	switch matches {
	case 0:
		return nil, nil, fmt.Errorf("no schedule matching %q on slot %d", idPrefix, slot.ID)
	case 1:
		return profile, sched, nil
	default:
		return nil, nil, fmt.Errorf("%q matches %d schedules, give more of the id", idPrefix, matches)
	}
}
