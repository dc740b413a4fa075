package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Local sends feed commands straight to the feeder-brain's LAN address.
type Local struct {
	client *http.Client
	log    *zap.Logger
}

func NewLocal(timeout time.Duration, log *zap.Logger) *Local {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Local{
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

type feedCommand struct {
	Grams  int `json:"grams"`
	Feeder int `json:"feeder"`
}

func (l *Local) Dispatch(ctx context.Context, target Target, grams int) Result {
	if target.FeederAddress == "" || target.FeederAddress == "N/A" {
		return Result{Message: "no feeder address"}
	}
	if grams <= 0 {
		return Result{Message: "nothing to dispense"}
	}
	if target.SlotID != 1 && target.SlotID != 2 {
		return Result{Message: fmt.Sprintf("invalid feeder slot %d", target.SlotID)}
	}

	body, err := json.Marshal(feedCommand{Grams: grams, Feeder: target.SlotID})
	if err != nil {
		return Result{Message: err.Error()}
	}

	url := "http://" + target.FeederAddress + "/feed"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		l.log.Warn("local feed failed",
			zap.String("address", target.FeederAddress),
			zap.Int("slot", target.SlotID),
			zap.Error(err))
		return Result{Message: fmt.Sprintf("feeder unreachable: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{Message: fmt.Sprintf("feeder returned HTTP %d", resp.StatusCode)}
	}
	return Result{OK: true, Message: fmt.Sprintf("dispensed %dg via LAN", grams)}
}
