package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/pawfeeds/companion/internal/models"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false

	slots, err := ctx.Store.Load()
	if err != nil {
		fmt.Printf("❌ Registry reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Registry reachable: OK (%s)\n", ctx.Store.Path())
	}

	if slots != nil {
		if err := checkSlotIDs(slots); err != nil {
			fmt.Printf("❌ Slot ids unique: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Slot ids unique: OK\n")
		}

		if err := checkScheduleTimes(slots); err != nil {
			fmt.Printf("❌ Schedule times parseable: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Schedule times parseable: OK\n")
		}

		// A slot with only a device id needs the relay to be fed at all.
		if err := checkRelayCoverage(ctx, slots); err != nil {
			fmt.Printf("⚠ Relay configured: WARNING\n")
			fmt.Printf("   %v\n", err)
		} else {
			fmt.Printf("✓ Relay configured: OK\n")
		}
	}

	if err := checkClockTimezone(); err != nil {
		fmt.Printf("❌ Clock/timezone: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock/timezone: OK\n")
	}

	if err := checkSingleInstance(); err != nil {
		fmt.Printf("⚠ Single instance: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Single instance: OK\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkSlotIDs(slots []models.FeederSlot) error {
	seen := make(map[int]bool)
	for _, slot := range slots {
		if seen[slot.ID] {
			return fmt.Errorf("duplicate slot id found: %d", slot.ID)
		}
		seen[slot.ID] = true
	}
	return nil
}

func checkScheduleTimes(slots []models.FeederSlot) error {
	for _, slot := range slots {
		for _, p := range slot.Profiles {
			for _, s := range p.Schedules {
				if _, err := time.Parse("15:04", s.TimeOfDay); err != nil {
					return fmt.Errorf("schedule %q on slot %d has unparseable time %q; it will never fire",
						s.Name, slot.ID, s.TimeOfDay)
				}
				if len(s.Days) == 0 {
					return fmt.Errorf("schedule %q on slot %d has no weekdays; it will never fire",
						s.Name, slot.ID)
				}
			}
		}
	}
	return nil
}

func checkRelayCoverage(ctx *Context, slots []models.FeederSlot) error {
	if ctx.relayURL() != "" {
		return nil
	}
	for _, slot := range slots {
		if !slot.HasFeederAddress() && slot.DeviceID != "" {
			return fmt.Errorf("slot %d is cloud-only but no relay URL is configured (PAWFEEDS_RELAY_URL)", slot.ID)
		}
	}
	return nil
}

func checkClockTimezone() error {
	// Check if system time is reasonable
	now := time.Now()

	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	_, offset := now.Zone()
	if offset == 0 && now.Location() == time.UTC {
		// This might be intentional, so just note it
		fmt.Printf("   Note: timezone is UTC\n")
	}

	return nil
}

// checkSingleInstance warns when a second pawfeeds process is running: two
// trigger loops against one registry can race on the day gate.
func checkSingleInstance() error {
	procs, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("failed to list processes: %v", err)
	}
	me := os.Getpid()
	for _, p := range procs {
		if p.Pid() == me {
			continue
		}
		if strings.HasPrefix(p.Executable(), "pawfeeds") {
			return fmt.Errorf("another pawfeeds process is running (pid %d)", p.Pid())
		}
	}
	return nil
}
