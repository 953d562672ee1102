package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// AppConfig holds the full runtime configuration. Values are fixed for the
// lifetime of the session once main has assembled them.
type AppConfig struct {
	Port           int           // HTTP port for the status surface
	Endpoint       string        // ZMQ endpoint of the sensor bridge
	BridgeBaseURL  string        // HTTP base URL of the sensor bridge, "" disables polling
	BridgeInterval time.Duration // Polling interval for bridge health
	Debug          bool          // Run with simulated sensor data
	DebugAcqRate   float64       // Simulated body-frame rate (frames/sec)
	OverlayRate    time.Duration // Overlay/status push interval for websocket clients
	RawLogEnabled  bool          // Write raw CBOR messages to disk
	RawLogDir      string        // Directory for raw ingest logs
	IngestLogEvery int           // Log every Nth ingest error
	OSCLogEvery    int           // Log every Nth OSC send failure
	IngestFallback bool          // Fall back to simulator when ingest fails

	Destinations Destinations // OSC output targets
}

// Destinations is the OSC endpoint list: one message per host per encode
// event, all on the same port. Loaded once at startup.
type Destinations struct {
	Hosts []string `json:"hosts"`
	Port  int      `json:"port"`
}

// DefaultDestinations is the built-in target list used when no
// configuration file is present: the local machine only.
func DefaultDestinations() Destinations {
	return Destinations{
		Hosts: []string{"127.0.0.1"},
		Port:  7000,
	}
}

// LoadDestinations reads the OSC destination list from a JSON file. A
// missing file is not an error: the built-in defaults are returned, so a
// bare deployment always has somewhere to send. A present-but-invalid file
// is an error.
func LoadDestinations(path string) (Destinations, error) {
	if path == "" {
		return DefaultDestinations(), nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultDestinations(), nil
	}
	if err != nil {
		return Destinations{}, err
	}

	dests := DefaultDestinations()
	if err := json.Unmarshal(data, &dests); err != nil {
		return Destinations{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(dests.Hosts) == 0 {
		return Destinations{}, fmt.Errorf("%s: empty destination host list", path)
	}
	if dests.Port < 1 || dests.Port > 65535 {
		return Destinations{}, fmt.Errorf("%s: invalid port %d", path, dests.Port)
	}
	return dests, nil
}
