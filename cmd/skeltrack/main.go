package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"skeltrack-go/internal/bridge"
	"skeltrack-go/internal/config"
	"skeltrack-go/internal/dispatch"
	"skeltrack-go/internal/ingest"
	"skeltrack-go/internal/output"
	"skeltrack-go/internal/pipeline"
	"skeltrack-go/internal/server"
	"skeltrack-go/internal/simulator"
	"skeltrack-go/internal/telemetry"
	"skeltrack-go/internal/tracker"
)

func main() {
	var (
		httpPort       = flag.Int("http-port", 8888, "HTTP port for the status surface")
		configPath     = flag.String("config", "osc_destinations.json", "OSC destination list (JSON); built-in defaults when missing")
		endpoint       = flag.String("bridge", "tcp://localhost:5571", "ZMQ endpoint of the sensor bridge")
		bridgeAPI      = flag.String("bridge-api", "", "HTTP base URL of the sensor bridge (health poll + face target sync)")
		bridgeInterval = flag.Duration("bridge-interval", 2*time.Second, "Polling interval for bridge health")
		overlayRate    = flag.Duration("overlay-rate", time.Second, "Telemetry push interval for websocket clients")
		debug          = flag.Bool("debug", false, "Run with simulated sensor data")
		debugAcqRate   = flag.Float64("debug-acq-rate", 30.0, "Simulated body-frame rate (frames/sec)")
		rawLogEnabled  = flag.Bool("raw-log", false, "Write raw CBOR messages to disk")
		rawLogDir      = flag.String("raw-log-dir", "rawlog", "Directory for raw ingest logs")
		ingestLogEvery = flag.Int("ingest-log-every", 100, "Log every Nth ingest error")
		oscLogEvery    = flag.Int("osc-log-every", 100, "Log every Nth OSC send failure")
		ingestFallback = flag.Bool("ingest-fallback", true, "Fall back to simulator when ingest fails")
	)
	flag.Parse()

	dests, err := config.LoadDestinations(*configPath)
	if err != nil {
		log.Fatalf("failed to load OSC destinations: %v", err)
	}
	log.Printf("dispatching to %d destination(s) on port %d: %v", len(dests.Hosts), dests.Port, dests.Hosts)

	cfg := config.AppConfig{
		Port:           *httpPort,
		Endpoint:       *endpoint,
		BridgeBaseURL:  *bridgeAPI,
		BridgeInterval: *bridgeInterval,
		Debug:          *debug,
		DebugAcqRate:   *debugAcqRate,
		OverlayRate:    *overlayRate,
		RawLogEnabled:  *rawLogEnabled,
		RawLogDir:      *rawLogDir,
		IngestLogEvery: *ingestLogEvery,
		OSCLogEvery:    *oscLogEvery,
		IngestFallback: *ingestFallback,
		Destinations:   dests,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var statusMu sync.Mutex
	sensorStatus := "unknown"
	if cfg.Debug {
		sensorStatus = "simulator"
	}

	var faceTarget tracker.FaceTarget
	if cfg.BridgeBaseURL != "" && !cfg.Debug {
		pusher := bridge.NewFaceTargetPusher(cfg.BridgeBaseURL)
		go pusher.Run(ctx)
		faceTarget = pusher
	}

	subjects := tracker.New(faceTarget)
	timer := telemetry.NewFrameTimer()
	pub := telemetry.NewPublisher()
	dispatcher := dispatch.NewWithLogEvery(cfg.Destinations, cfg.OSCLogEvery)
	uiMessages := make(chan any, 16)
	pipe := pipeline.New(subjects, timer, pub, dispatcher, uiMessages)

	var events <-chan ingest.Event
	if cfg.Debug {
		events = simulator.Stream(ctx, cfg.DebugAcqRate)
	} else {
		var recorder ingest.RawRecorder
		if cfg.RawLogEnabled {
			writer, err := output.NewRawLogWriter(cfg.RawLogDir, "raw_cbor")
			if err != nil {
				log.Fatalf("failed to start raw log: %v", err)
			}
			recorder = writer
			go func() {
				<-ctx.Done()
				if err := writer.Close(); err != nil {
					log.Printf("raw log close failed: %v", err)
				}
			}()
		}

		out := make(chan ingest.Event, 128)
		events = out
		go func() {
			defer close(out)
			var ingestCh <-chan ingest.Event
			startIngest := func() {
				frames, err := ingest.StreamWithLogEveryAndRecorder(ctx, cfg.Endpoint, cfg.IngestLogEvery, recorder)
				if err != nil {
					if cfg.IngestFallback {
						log.Printf("failed to start ingest: %v; falling back to simulator", err)
						statusMu.Lock()
						sensorStatus = "simulator"
						statusMu.Unlock()
						ingestCh = simulator.Stream(ctx, cfg.DebugAcqRate)
					} else {
						log.Fatalf("failed to start ingest: %v", err)
					}
				} else {
					ingestCh = frames
				}
			}
			startIngest()
			for {
				select {
				case <-ctx.Done():
					return
				case ev, ok := <-ingestCh:
					if !ok {
						startIngest()
						continue
					}
					select {
					case <-ctx.Done():
						return
					case out <- ev:
					}
				}
			}
		}()
	}

	if cfg.BridgeBaseURL != "" && !cfg.Debug {
		go bridge.Poll(ctx, cfg.BridgeBaseURL, cfg.BridgeInterval, func(update bridge.Status) {
			statusMu.Lock()
			previous := sensorStatus
			if update.Absent() {
				sensorStatus = "absent"
			} else {
				sensorStatus = update.Sensor
			}
			changed := previous != sensorStatus
			current := sensorStatus
			statusMu.Unlock()
			if changed {
				log.Printf("sensor status: %s", current)
			}
		})
	}

	go pipe.Run(ctx, events)

	// Telemetry push for websocket clients, decoupled from the frame rate.
	go func() {
		rate := cfg.OverlayRate
		if rate <= 0 {
			rate = time.Second
		}
		ticker := time.NewTicker(rate)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				snap := pub.Last()
				payload := map[string]any{
					"type":        "telemetry",
					"fps":         snap.FPSText(),
					"uptime":      snap.UptimeText(),
					"last_status": snap.LastStatus,
					"tracker":     snap.TrackerState,
				}
				select {
				case uiMessages <- payload:
				default:
				}
			}
		}
	}()

	statusFn := func() map[string]any {
		snap := pub.Last()
		sent, failed := dispatcher.Counts()
		faceFrames, facesSkipped, facesDropped, ticksAbandoned := pipe.Counters()
		statusMu.Lock()
		sensor := sensorStatus
		statusMu.Unlock()
		return map[string]any{
			"session_id":  snap.SessionID,
			"fps":         snap.FPSText(),
			"uptime":      snap.UptimeText(),
			"last_status": snap.LastStatus,
			"tracker":     snap.TrackerState,
			"sensor":      sensor,
			"metrics": map[string]any{
				"body_frames_total":            snap.BodyFrames,
				"face_frames_total":            faceFrames,
				"faces_skipped_total":          facesSkipped,
				"faces_dropped_total":          facesDropped,
				"ticks_abandoned_total":        ticksAbandoned,
				"osc_sends_total":              sent,
				"osc_send_failures_total":      failed,
				"ingest_decode_failures_total": ingest.DecodeFailures(),
			},
		}
	}

	configFn := func() map[string]any {
		return map[string]any{
			"type":       "config",
			"osc_hosts":  cfg.Destinations.Hosts,
			"osc_port":   cfg.Destinations.Port,
			"bridge":     cfg.Endpoint,
			"bridge_api": cfg.BridgeBaseURL,
			"debug":      cfg.Debug,
		}
	}

	log.Printf("status surface at http://localhost:%d", cfg.Port)
	if err := server.Run(ctx, cfg.Port, uiMessages, statusFn, configFn); err != nil {
		log.Printf("server stopped: %v", err)
	}
}
