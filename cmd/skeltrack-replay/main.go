// Replays rawlog captures: dumps records as JSON, or re-publishes them
// over ZMQ so a live pipeline can consume a recorded session.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/pebbe/zmq4"

	"skeltrack-go/internal/output"
)

func main() {
	var (
		path     = flag.String("path", "", "Path to rawlog .bin file")
		limit    = flag.Int("limit", 0, "Number of records to process (0 = all)")
		bind     = flag.String("bind", "", "ZMQ PUSH bind address to replay into (e.g. tcp://*:5571); omit to dump as JSON")
		realtime = flag.Bool("realtime", true, "Pace replay by the recorded timestamps")
	)
	flag.Parse()

	if *path == "" {
		log.Fatal("path is required")
	}

	if *bind == "" {
		if err := dump(*path, *limit); err != nil {
			log.Fatalf("dump failed: %v", err)
		}
		return
	}
	if err := replay(*path, *limit, *bind, *realtime); err != nil {
		log.Fatalf("replay failed: %v", err)
	}
}

func dump(path string, limit int) error {
	count := 0
	err := output.ReadRawLog(path, func(nanos int64, payload []byte) error {
		if limit > 0 && count >= limit {
			return errDone
		}
		count++

		var decoded any
		if err := cbor.Unmarshal(payload, &decoded); err != nil {
			log.Printf("record %d: CBOR decode error: %v", count, err)
			return nil
		}
		pretty, err := json.MarshalIndent(output.NormalizeJSONValue(decoded), "", "  ")
		if err != nil {
			log.Printf("record %d: JSON encode error: %v", count, err)
			return nil
		}

		log.Printf("record %d timestamp=%s size=%d", count, time.Unix(0, nanos).Format(time.RFC3339Nano), len(payload))
		fmt.Println(string(pretty))
		return nil
	})
	if err != nil && err != errDone {
		return err
	}
	return nil
}

func replay(path string, limit int, bind string, realtime bool) error {
	socket, err := zmq4.NewSocket(zmq4.PUSH)
	if err != nil {
		return err
	}
	defer socket.Close()
	if err := socket.Bind(bind); err != nil {
		return err
	}
	log.Printf("replaying %s on %s", path, bind)

	count := 0
	var lastNanos int64
	err = output.ReadRawLog(path, func(nanos int64, payload []byte) error {
		if limit > 0 && count >= limit {
			return errDone
		}
		count++

		if realtime && lastNanos > 0 {
			gap := time.Duration(nanos - lastNanos)
			if gap > 0 && gap < 5*time.Second {
				time.Sleep(gap)
			}
		}
		lastNanos = nanos

		_, err := socket.SendBytes(payload, 0)
		return err
	})
	if err != nil && err != errDone {
		return err
	}
	log.Printf("replayed %d record(s)", count)
	return nil
}

var errDone = fmt.Errorf("done")
