package provision

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pawfeeds/companion/internal/models"
)

func TestParseNetworks_Shapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []models.WifiNetwork
	}{
		{
			name: "bare array",
			body: `[{"ssid":"Den","rssi":-40,"secure":true},{"ssid":"Attic","rssi":-70,"secure":false}]`,
			want: []models.WifiNetwork{
				{SSID: "Den", RSSI: -40, Secure: true},
				{SSID: "Attic", RSSI: -70, Secure: false},
			},
		},
		{
			name: "wrapped under networks",
			body: `{"networks":[{"ssid":"Den","rssi":-40}]}`,
			want: []models.WifiNetwork{{SSID: "Den", RSSI: -40, Secure: true}},
		},
		{
			name: "wrapped under AP with aliases",
			body: `{"AP":[{"ap":"Den","signal":"-40","auth":"open"}]}`,
			want: []models.WifiNetwork{{SSID: "Den", RSSI: -40, Secure: false}},
		},
		{
			name: "nested under scan",
			body: `{"scan":{"results":[{"SSID":"Den","RSSI":-40,"encryption":"WPA2"}]}}`,
			want: []models.WifiNetwork{{SSID: "Den", RSSI: -40, Secure: true}},
		},
		{
			name: "single object",
			body: `{"ssid":"Den","rssi":-40,"encrypted":true}`,
			want: []models.WifiNetwork{{SSID: "Den", RSSI: -40, Secure: true}},
		},
		{
			name: "newline-delimited ssids",
			body: "Den\r\nAttic\n\nGarage\n",
			want: []models.WifiNetwork{
				{SSID: "Den", Secure: true},
				{SSID: "Attic", Secure: true},
				{SSID: "Garage", Secure: true},
			},
		},
		{
			name: "empty ssids dropped",
			body: `[{"ssid":"","rssi":-10},{"ssid":"Den","rssi":-40}]`,
			want: []models.WifiNetwork{{SSID: "Den", RSSI: -40, Secure: true}},
		},
		{
			name: "empty body",
			body: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseNetworks([]byte(tt.body))
			if len(got) != len(tt.want) {
				t.Fatalf("got %d networks %+v, want %d", len(got), got, len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("network %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseNetworks_SortedBySignalStrength(t *testing.T) {
	body := `[{"ssid":"Weak","rssi":-80},{"ssid":"Strong","rssi":-30},{"ssid":"Mid","rssi":-55}]`
	got := parseNetworks([]byte(body))
	if len(got) != 3 {
		t.Fatalf("got %d networks", len(got))
	}
	if got[0].SSID != "Strong" || got[1].SSID != "Mid" || got[2].SSID != "Weak" {
		t.Errorf("order = %s, %s, %s", got[0].SSID, got[1].SSID, got[2].SSID)
	}
}

func hostOf(srv *httptest.Server) string {
	return strings.TrimPrefix(srv.URL, "http://")
}

func TestProvision_JSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/provision" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"success":true,"message":"ok","deviceId":"dev-1","feederId":1,"cameraIp":"192.168.1.40","feederIp":"192.168.1.42"}`))
	}))
	defer srv.Close()

	c := NewClient(hostOf(srv))
	res := c.Provision(context.Background(), models.ProvisionRequest{SSID: "Den", FeederID: 1})
	if !res.Success {
		t.Fatalf("Provision failed: %s", res.Message)
	}
	if res.DeviceID != "dev-1" || res.FeederIP != "192.168.1.42" {
		t.Errorf("result = %+v", res)
	}
}

func TestProvision_LegacyPlainTextResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("rebooting into station mode"))
	}))
	defer srv.Close()

	c := NewClient(hostOf(srv))
	res := c.Provision(context.Background(), models.ProvisionRequest{SSID: "Den"})
	if !res.Success {
		t.Error("plain-text 2xx should count as success for legacy firmware")
	}
	if res.Message != "rebooting into station mode" {
		t.Errorf("message = %q", res.Message)
	}
}

func TestProvision_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad creds", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(hostOf(srv))
	res := c.Provision(context.Background(), models.ProvisionRequest{SSID: "Den"})
	if res.Success {
		t.Error("HTTP 400 reported as success")
	}
	if res.Message != "HTTP 400" {
		t.Errorf("message = %q", res.Message)
	}
}

func TestFactoryReset(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))
	defer srv.Close()

	c := NewClient("")
	if !c.FactoryReset(context.Background(), hostOf(srv)) {
		t.Error("FactoryReset against a 200 endpoint returned false")
	}
	if gotPath != "/factory_reset" {
		t.Errorf("path = %q", gotPath)
	}

	if c.FactoryReset(context.Background(), "127.0.0.1:1") {
		t.Error("FactoryReset against a dead address returned true")
	}
}
