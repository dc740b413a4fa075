package discovery

import (
	"reflect"
	"testing"

	"github.com/pawfeeds/companion/internal/models"
)

func probe(addr, hostname string, role models.DeviceRole, weight float64) models.ProbeResult {
	return models.ProbeResult{
		Address:              addr,
		Hostname:             hostname,
		Role:                 role,
		Connected:            true,
		ContainerWeightGrams: weight,
	}
}

func TestPair_TwoSlotUnit(t *testing.T) {
	results := []models.ProbeResult{
		probe("192.168.1.40", "pawfeeds-cam-kitchen", models.RoleCamera, 0),
		probe("192.168.1.41", "pawfeeds-cam-kitchen-2", models.RoleCamera, 0),
		probe("192.168.1.42", "pawfeeds-std-kitchen", models.RoleFeeder, 312),
	}

	devices := Pair(results)
	if len(devices) != 2 {
		t.Fatalf("got %d devices, want 2", len(devices))
	}

	d1 := devices[0]
	if d1.DisplayName != "Feeder 1 (kitchen)" || d1.SlotID != 1 {
		t.Errorf("slot 1 = %q/%d", d1.DisplayName, d1.SlotID)
	}
	if d1.CameraAddress != "192.168.1.40" || d1.FeederAddress != "192.168.1.42" {
		t.Errorf("slot 1 addresses = %q/%q", d1.CameraAddress, d1.FeederAddress)
	}

	d2 := devices[1]
	if d2.DisplayName != "Feeder 2 (kitchen)" || d2.SlotID != 2 {
		t.Errorf("slot 2 = %q/%d", d2.DisplayName, d2.SlotID)
	}
	if d2.CameraAddress != "192.168.1.41" || d2.FeederAddress != "192.168.1.42" {
		t.Errorf("slot 2 addresses = %q/%q", d2.CameraAddress, d2.FeederAddress)
	}

	// The two slots share one container, so both carry the brain's weight.
	if d1.ContainerWeightGrams != 312 || d2.ContainerWeightGrams != 312 {
		t.Errorf("weights = %v/%v, want 312/312", d1.ContainerWeightGrams, d2.ContainerWeightGrams)
	}
}

func TestPair_PartialPairs(t *testing.T) {
	results := []models.ProbeResult{
		// Camera with no feeder-brain on the network.
		probe("192.168.1.50", "pawfeeds-cam-porch", models.RoleCamera, 0),
		// Headless feeder-brain with no cameras.
		probe("192.168.1.60", "pawfeeds-std-garage", models.RoleFeeder, 95),
	}

	devices := Pair(results)
	if len(devices) != 2 {
		t.Fatalf("got %d devices, want 2", len(devices))
	}

	var porch, garage models.PairedDevice
	for _, d := range devices {
		switch d.Core {
		case "porch":
			porch = d
		case "garage":
			garage = d
		}
	}

	if porch.CameraAddress != "192.168.1.50" || porch.FeederAddress != "" {
		t.Errorf("camera-only pair = %+v", porch)
	}
	if garage.FeederAddress != "192.168.1.60" || garage.CameraAddress != "" {
		t.Errorf("headless pair = %+v", garage)
	}
	if garage.SlotID != 1 {
		t.Errorf("headless brain slot = %d, want 1", garage.SlotID)
	}
}

func TestPair_UnknownRoleReclassifiedByHostname(t *testing.T) {
	results := []models.ProbeResult{
		probe("192.168.1.70", "pawfeeds-cam-den", models.RoleUnknown, 0),
		probe("192.168.1.71", "pawfeeds-std-den", models.RoleUnknown, 0),
		probe("192.168.1.72", "office-printer", models.RoleUnknown, 0),
	}

	devices := Pair(results)
	if len(devices) != 1 {
		t.Fatalf("got %d devices, want 1", len(devices))
	}
	d := devices[0]
	if d.CameraAddress != "192.168.1.70" || d.FeederAddress != "192.168.1.71" {
		t.Errorf("reclassified pair = %+v", d)
	}
}

func TestPair_Idempotent(t *testing.T) {
	results := []models.ProbeResult{
		probe("192.168.1.42", "pawfeeds-std-kitchen", models.RoleFeeder, 312),
		probe("192.168.1.41", "pawfeeds-cam-kitchen-2", models.RoleCamera, 0),
		probe("192.168.1.40", "pawfeeds-cam-kitchen", models.RoleCamera, 0),
		probe("192.168.1.60", "pawfeeds-std-garage", models.RoleFeeder, 95),
	}

	first := Pair(results)
	for i := 0; i < 10; i++ {
		if again := Pair(results); !reflect.DeepEqual(first, again) {
			t.Fatalf("Pair not idempotent:\nfirst: %+v\nagain: %+v", first, again)
		}
	}
}

func TestSplitCameraHost(t *testing.T) {
	tests := []struct {
		hostname string
		core     string
		slot     int
	}{
		{"pawfeeds-cam-kitchen", "kitchen", 1},
		{"pawfeeds-cam-kitchen-2", "kitchen", 2},
		{"pawfeeds-cam-", "", 0},
		{"pawfeeds-std-kitchen", "", 0},
		{"random-host", "", 0},
	}

	for _, tt := range tests {
		core, slot := splitCameraHost(tt.hostname)
		if core != tt.core || slot != tt.slot {
			t.Errorf("splitCameraHost(%q) = (%q, %d), want (%q, %d)",
				tt.hostname, core, slot, tt.core, tt.slot)
		}
	}
}
