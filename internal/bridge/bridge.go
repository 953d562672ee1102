// Package bridge talks to the sensor bridge process over HTTP: a health
// poll that drives the "sensor absent" status, and a push channel keeping
// the bridge's face-tracking target aligned with the active subject.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Status is one health-poll result. Sensor is "absent" whenever the
// bridge is unreachable or reports an error; the pipeline keeps running in
// a degraded no-data mode while it is.
type Status struct {
	Sensor string
}

// Absent reports whether the sensor should be treated as missing.
func (s Status) Absent() bool {
	return s.Sensor == "absent" || strings.HasPrefix(s.Sensor, "http_")
}

// Poll fetches bridge health at the given interval until the context
// ends, invoking update after every attempt. A no-op when baseURL is
// empty.
func Poll(ctx context.Context, baseURL string, interval time.Duration, update func(Status)) {
	if baseURL == "" || update == nil {
		return
	}
	baseURL = strings.TrimRight(baseURL, "/")
	client := &http.Client{
		Timeout: 900 * time.Millisecond,
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		update(Status{Sensor: fetchStatus(ctx, client, baseURL+"/health")})

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func fetchStatus(ctx context.Context, client *http.Client, endpoint string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "absent"
	}
	resp, err := client.Do(req)
	if err != nil {
		return "absent"
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("http_%d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "absent"
	}
	if len(body) == 0 {
		return "ok"
	}

	state, ok := extractState(body)
	if !ok {
		return "ok"
	}
	return state
}

func extractState(payload []byte) (string, bool) {
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", false
	}
	for _, key := range []string{"state", "status", "sensor"} {
		if entry, ok := decoded[key].(string); ok && entry != "" {
			return strings.ToLower(entry), true
		}
	}
	return "", false
}
