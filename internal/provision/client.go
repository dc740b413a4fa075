package provision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pawfeeds/companion/internal/models"
)

// DefaultAPHost is the fixed address a device serves while in AP mode.
const DefaultAPHost = "192.168.4.1"

// Client talks to a device's temporary AP-mode HTTP surface during initial
// provisioning, plus the couple of LAN endpoints that share its tolerance
// requirements.
type Client struct {
	host   string
	client *http.Client
}

func NewClient(host string) *Client {
	if host == "" {
		host = DefaultAPHost
	}
	return &Client{
		host:   host,
		client: &http.Client{Timeout: 20 * time.Second},
	}
}

// Networks fetches and normalizes the device's Wi-Fi scan. Firmware
// revisions disagree wildly on the response shape (bare array, wrapped
// object under half a dozen key names, newline-delimited SSIDs); all of them
// come out as one list sorted by signal strength, empty SSIDs dropped.
func (c *Client) Networks(ctx context.Context) ([]models.WifiNetwork, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+c.host+"/scan", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wifi scan failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 256<<10))
	if err != nil {
		return nil, fmt.Errorf("wifi scan failed: %w", err)
	}
	return parseNetworks(raw), nil
}

func parseNetworks(raw []byte) []models.WifiNetwork {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var elements []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &elements); err == nil {
			return normalizeNetworks(parseNetworkArray(elements))
		}
	}

	if strings.HasPrefix(trimmed, "{") {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &fields); err == nil {
			if list, ok := extractNetworkArray(fields); ok {
				return normalizeNetworks(parseNetworkArray(list))
			}
			if n, ok := parseNetworkObject([]byte(trimmed)); ok {
				return normalizeNetworks([]models.WifiNetwork{n})
			}
			return nil
		}
	}

	// Oldest firmware: one SSID per line.
	var networks []models.WifiNetwork
	for _, line := range strings.FieldsFunc(trimmed, func(r rune) bool { return r == '\r' || r == '\n' }) {
		if ssid := strings.TrimSpace(line); ssid != "" {
			networks = append(networks, models.WifiNetwork{SSID: ssid, Secure: true})
		}
	}
	return networks
}

var networkListKeys = []string{"networks", "aps", "AP", "results", "wifi", "stations", "list"}

func extractNetworkArray(fields map[string]json.RawMessage) ([]json.RawMessage, bool) {
	for _, key := range networkListKeys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var elements []json.RawMessage
		if err := json.Unmarshal(raw, &elements); err == nil {
			return elements, true
		}
	}
	// Some firmware nests the whole thing under "scan".
	if raw, ok := fields["scan"]; ok {
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(raw, &nested); err == nil {
			return extractNetworkArray(nested)
		}
	}
	return nil, false
}

func parseNetworkArray(elements []json.RawMessage) []models.WifiNetwork {
	networks := make([]models.WifiNetwork, 0, len(elements))
	for _, el := range elements {
		if n, ok := parseNetworkObject(el); ok {
			networks = append(networks, n)
		}
	}
	return networks
}

func parseNetworkObject(raw []byte) (models.WifiNetwork, bool) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return models.WifiNetwork{}, false
	}

	n := models.WifiNetwork{
		SSID: stringAlias(fields, "ssid", "SSID", "ap"),
		RSSI: intAlias(fields, "rssi", "RSSI", "signal"),
	}

	if secure, ok := boolAlias(fields, "secure", "encrypted", "secureMode"); ok {
		n.Secure = secure
	} else if auth := stringAlias(fields, "auth", "encryption", "ENC"); auth != "" {
		n.Secure = !strings.EqualFold(auth, "open")
	} else {
		// Unknown security: assume the worse case so the UI asks for a
		// password.
		n.Secure = true
	}
	return n, true
}

func normalizeNetworks(networks []models.WifiNetwork) []models.WifiNetwork {
	kept := networks[:0]
	for _, n := range networks {
		if strings.TrimSpace(n.SSID) != "" {
			kept = append(kept, n)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].RSSI > kept[j].RSSI })
	if len(kept) == 0 {
		return nil
	}
	return kept
}

func stringAlias(fields map[string]any, aliases ...string) string {
	for _, key := range aliases {
		if s, ok := fields[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func intAlias(fields map[string]any, aliases ...string) int {
	for _, key := range aliases {
		switch v := fields[key].(type) {
		case float64:
			return int(v)
		case string:
			if i, err := strconv.Atoi(v); err == nil {
				return i
			}
		}
	}
	return 0
}

func boolAlias(fields map[string]any, aliases ...string) (bool, bool) {
	for _, key := range aliases {
		switch v := fields[key].(type) {
		case bool:
			return v, true
		case string:
			if b, err := strconv.ParseBool(v); err == nil {
				return b, true
			}
		case float64:
			return v != 0, true
		}
	}
	return false, false
}

// Provision performs the one-time handshake that hands the device its home
// Wi-Fi credentials and identity. Transport and parse failures come back as
// a failed result, never an error a caller has to distinguish.
func (c *Client) Provision(ctx context.Context, req models.ProvisionRequest) models.ProvisionResult {
	body, err := json.Marshal(req)
	if err != nil {
		return models.ProvisionResult{Message: err.Error()}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"http://"+c.host+"/provision", bytes.NewReader(body))
	if err != nil {
		return models.ProvisionResult{Message: err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return models.ProvisionResult{Message: fmt.Sprintf("device unreachable: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.ProvisionResult{Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return models.ProvisionResult{Message: "empty response"}
	}

	if strings.HasPrefix(trimmed, "{") {
		var result models.ProvisionResult
		if err := json.Unmarshal([]byte(trimmed), &result); err == nil {
			return result
		}
	}
	// Old firmware answers 2xx with a plain-text message.
	return models.ProvisionResult{Success: true, Message: trimmed}
}

// FactoryReset asks the device at the given LAN address to wipe itself. Any
// 2xx counts; everything else is a false.
func (c *Client) FactoryReset(ctx context.Context, address string) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"http://"+address+"/factory_reset", strings.NewReader(""))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}

// Status fetches the AP-mode /status body, for pre-provisioning checks.
func (c *Client) Status(ctx context.Context) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+c.host+"/status", nil)
	if err != nil {
		return "", false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", false
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", false
	}
	return string(raw), true
}
