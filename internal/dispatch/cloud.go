package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// TokenSource supplies the bearer token for the cloud relay. Token
// acquisition itself belongs to the auth collaborator, not this package.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource backed by a fixed token (typically from the
// environment).
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	if t == "" {
		return "", fmt.Errorf("no auth token configured")
	}
	return string(t), nil
}

// Cloud relays feed commands through the authenticated cloud command
// endpoint, for slots that are provisioned but not reachable on the LAN.
type Cloud struct {
	url    string
	tokens TokenSource
	client *http.Client
	log    *zap.Logger
}

func NewCloud(url string, tokens TokenSource, timeout time.Duration, log *zap.Logger) *Cloud {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Cloud{
		url:    url,
		tokens: tokens,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

func (c *Cloud) Dispatch(ctx context.Context, target Target, grams int) Result {
	if target.DeviceID == "" {
		return Result{Message: "no device id"}
	}
	if grams <= 0 {
		return Result{Message: "nothing to dispense"}
	}

	command := map[string]any{
		"type":   "FEED",
		"feeder": target.SlotID,
		"grams":  grams,
	}
	return c.SendCommand(ctx, target.DeviceID, command)
}

// SendCommand posts an arbitrary command envelope for a device to the relay.
func (c *Cloud) SendCommand(ctx context.Context, deviceID string, command any) Result {
	if c.url == "" {
		return Result{Message: "no relay configured"}
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return Result{Message: fmt.Sprintf("auth failed: %v", err)}
	}

	payload := map[string]any{
		"data": map[string]any{
			"deviceId": deviceID,
			"command":  command,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Result{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("relay request failed", zap.String("device", deviceID), zap.Error(err))
		return Result{Message: fmt.Sprintf("relay unreachable: %v", err)}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{Message: fmt.Sprintf("relay returned HTTP %d", resp.StatusCode)}
	}

	// A 2xx still carries an application-level verdict; an unreadable body
	// is treated as success since the relay accepted the command.
	if ok, msg, found := relayVerdict(raw); found && !ok {
		return Result{Message: msg}
	}
	return Result{OK: true, Message: "command sent"}
}

// relayVerdict digs the success flag and message out of a relay response
// body, tolerating both bare and data-wrapped shapes.
func relayVerdict(raw []byte) (ok bool, msg string, found bool) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return false, "", false
	}
	if inner, isMap := fields["data"].(map[string]any); isMap {
		fields = inner
	}

	verdict, isBool := fields["success"].(bool)
	if !isBool {
		return false, "", false
	}
	msg, _ = fields["message"].(string)
	if msg == "" {
		msg = "relay rejected command"
	}
	return verdict, msg, true
}
