package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/pawfeeds/companion/internal/dispatch"
	"github.com/pawfeeds/companion/internal/models"
	"github.com/pawfeeds/companion/internal/registry"
)

type Context struct {
	Store     registry.Provider
	Logger    *zap.Logger
	RelayURL  string
	AuthToken string
	UID       string
}

// relayURL resolves the cloud relay endpoint: the flag/env wins, the
// persisted setting is the fallback.
func (ctx *Context) relayURL() string {
	if ctx.RelayURL != "" {
		return ctx.RelayURL
	}
	return ctx.Store.Settings().RelayURL
}

// cloudTransport returns the relay transport, or nil when no relay is
// configured so dispatch.Select falls through cleanly.
func (ctx *Context) cloudTransport(log *zap.Logger) dispatch.Transport {
	url := ctx.relayURL()
	if url == "" {
		return nil
	}
	return dispatch.NewCloud(url, dispatch.StaticToken(ctx.AuthToken), 0, log)
}

var (
	onlineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	offlineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func statusBadge(online bool) string {
	if online {
		return onlineStyle.Render("online")
	}
	return offlineStyle.Render("offline")
}

func findSlot(slots []models.FeederSlot, id int) (*models.FeederSlot, error) {
	for i := range slots {
		if slots[i].ID == id {
			return &slots[i], nil
		}
	}
	return nil, fmt.Errorf("no feeder slot with id %d", id)
}

// findProfile resolves a profile by name within a slot; an empty name means
// the slot's first profile.
func findProfile(slot *models.FeederSlot, name string) (*models.PetProfile, error) {
	if len(slot.Profiles) == 0 {
		return nil, fmt.Errorf("slot %d has no pet profiles", slot.ID)
	}
	if name == "" {
		return &slot.Profiles[0], nil
	}
	for i := range slot.Profiles {
		if strings.EqualFold(slot.Profiles[i].Name, name) {
			return &slot.Profiles[i], nil
		}
	}
	return nil, fmt.Errorf("slot %d has no profile named %q", slot.ID, name)
}

var allWeekdays = []time.Weekday{
	time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
	time.Thursday, time.Friday, time.Saturday,
}

func parseWeekdays(s string) ([]time.Weekday, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "", "daily", "everyday":
		return append([]time.Weekday(nil), allWeekdays...), nil
	}

	dayMap := map[string]time.Weekday{
		"sun":       time.Sunday,
		"sunday":    time.Sunday,
		"mon":       time.Monday,
		"monday":    time.Monday,
		"tue":       time.Tuesday,
		"tuesday":   time.Tuesday,
		"wed":       time.Wednesday,
		"wednesday": time.Wednesday,
		"thu":       time.Thursday,
		"thursday":  time.Thursday,
		"fri":       time.Friday,
		"friday":    time.Friday,
		"sat":       time.Saturday,
		"saturday":  time.Saturday,
	}

	var weekdays []time.Weekday
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if wd, ok := dayMap[part]; ok {
			weekdays = append(weekdays, wd)
			continue
		}
		// Try parsing as number (0=Sunday, 6=Saturday)
		num, err := strconv.Atoi(part)
		if err != nil || num < 0 || num > 6 {
			return nil, fmt.Errorf("invalid weekday: %s", part)
		}
		weekdays = append(weekdays, time.Weekday(num))
	}
	return weekdays, nil
}

func formatDays(days []time.Weekday) string {
	if len(days) >= 7 {
		return "daily"
	}
	names := make([]string, 0, len(days))
	for _, d := range days {
		names = append(names, d.String()[:3])
	}
	return strings.Join(names, ",")
}
