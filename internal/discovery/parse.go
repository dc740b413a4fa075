package discovery

import (
	"encoding/json"
	"strings"

	"github.com/pawfeeds/companion/internal/models"
)

// deviceStatus is the tolerantly-parsed body of a /hello or /status response.
// Deployed firmware revisions disagree on field names, so every field is
// looked up under each historically-used alias and defaults to empty/zero
// when absent. A malformed body parses to the zero value, never an error.
type deviceStatus struct {
	Hostname  string
	Role      string
	Connected bool
	Weight    float64
}

func parseDeviceStatus(body []byte) deviceStatus {
	st := deviceStatus{Connected: true}

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return st
	}

	st.Hostname = stringField(fields, "hostname", "host", "name")
	st.Role = stringField(fields, "type", "device", "role", "mode")
	st.Weight = numberField(fields, "container_weight_grams", "containerWeightGrams", "weight")
	if v, ok := boolField(fields, "connected"); ok {
		st.Connected = v
	}
	return st
}

func stringField(fields map[string]any, aliases ...string) string {
	for _, key := range aliases {
		if s, ok := fields[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func numberField(fields map[string]any, aliases ...string) float64 {
	for _, key := range aliases {
		switch v := fields[key].(type) {
		case float64:
			return v
		case string:
			var f float64
			if err := json.Unmarshal([]byte(v), &f); err == nil {
				return f
			}
		}
	}
	return 0
}

func boolField(fields map[string]any, aliases ...string) (bool, bool) {
	for _, key := range aliases {
		if b, ok := fields[key].(bool); ok {
			return b, true
		}
	}
	return false, false
}

const (
	cameraHostPrefix = "pawfeeds-cam-"
	feederHostPrefix = "pawfeeds-std-"
)

// classify maps a declared role (or, failing that, the hostname convention)
// to a device role. Hosts that match neither stay unknown but are kept.
func classify(role, hostname string) models.DeviceRole {
	switch strings.ToLower(role) {
	case "camera", "camera-sta", "cam":
		return models.RoleCamera
	case "feeder", "std", "sta":
		return models.RoleFeeder
	}
	switch {
	case strings.HasPrefix(hostname, cameraHostPrefix):
		return models.RoleCamera
	case strings.HasPrefix(hostname, feederHostPrefix):
		return models.RoleFeeder
	}
	return models.RoleUnknown
}
