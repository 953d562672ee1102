package ingest

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/pebbe/zmq4"

	"skeltrack-go/internal/types"
)

// Event is one decoded message from the sensor bridge. Exactly one of the
// payload fields is meaningful, selected by Type.
type Event struct {
	Type   string
	Body   types.BodyFrame
	Face   types.FaceFrame
	LostID int64
}

const (
	EventBody = "body"
	EventFace = "face"
	EventLost = "lost"
)

// RawRecorder receives every raw message before decoding. Used for rawlog
// capture; may be nil.
type RawRecorder interface {
	Record(payload []byte) error
}

// Stream returns a channel of events from the sensor bridge. Expects CBOR
// messages shaped like the bridge protocol:
//
//	{ "type": "body", "seq": <int>, "time": <float>, "bodies": [ ... ] }
//	{ "type": "face", "seq": <int>, "time": <float>, "id": <int>, ... }
//	{ "type": "lost", "id": <int> }
func Stream(ctx context.Context, endpoint string) (<-chan Event, error) {
	return StreamWithLogEveryAndRecorder(ctx, endpoint, 1, nil)
}

func StreamWithLogEveryAndRecorder(ctx context.Context, endpoint string, logEvery int, recorder RawRecorder) (<-chan Event, error) {
	if logEvery < 1 {
		logEvery = 1
	}
	socket, err := zmq4.NewSocket(zmq4.PULL)
	if err != nil {
		return nil, err
	}
	if err := socket.Connect(endpoint); err != nil {
		_ = socket.Close()
		return nil, err
	}

	out := make(chan Event, 128)
	go func() {
		defer close(out)
		defer socket.Close()

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			msg, err := socket.RecvBytes(0)
			if err != nil {
				logEveryN(logEvery, "ingest recv error: %v", err)
				continue
			}
			if recorder != nil {
				if err := recorder.Record(msg); err != nil {
					logEveryN(logEvery, "rawlog record error: %v", err)
				}
			}

			event, ok := decodeMessage(msg, logEvery)
			if !ok {
				continue
			}

			select {
			case <-ctx.Done():
				return
			case out <- event:
			}
		}
	}()

	return out, nil
}

// Wire shapes for the bridge protocol. Joints arrive as name → [x,y,z];
// animation units as a plain float array.
type wireMessage struct {
	Type   string     `cbor:"type"`
	Seq    uint64     `cbor:"seq"`
	Time   float64    `cbor:"time"`
	Bodies []wireBody `cbor:"bodies"`
	ID     int64      `cbor:"id"`
	Pitch  float64    `cbor:"pitch"`
	Yaw    float64    `cbor:"yaw"`
	Roll   float64    `cbor:"roll"`
	AU     []float64  `cbor:"au"`
}

type wireBody struct {
	ID      int64                `cbor:"id"`
	Tracked bool                 `cbor:"tracked"`
	Joints  map[string][]float64 `cbor:"joints"`
}

func decodeMessage(msg []byte, logEvery int) (Event, bool) {
	start := time.Now()
	defer func() {
		decodeCount.Add(1)
		decodeNanos.Add(uint64(time.Since(start).Nanoseconds()))
	}()

	var payload wireMessage
	if err := cbor.Unmarshal(msg, &payload); err != nil {
		decodeFailures.Add(1)
		logEveryN(logEvery, "ingest CBOR decode error: %v", err)
		return Event{}, false
	}

	switch payload.Type {
	case EventBody:
		frame, err := toBodyFrame(payload)
		if err != nil {
			decodeFailures.Add(1)
			logEveryN(logEvery, "ingest invalid body frame: %v", err)
			return Event{}, false
		}
		return Event{Type: EventBody, Body: frame}, true
	case EventFace:
		face, err := toFaceFrame(payload)
		if err != nil {
			decodeFailures.Add(1)
			logEveryN(logEvery, "ingest invalid face frame: %v", err)
			return Event{}, false
		}
		return Event{Type: EventFace, Face: face}, true
	case EventLost:
		return Event{Type: EventLost, LostID: payload.ID}, true
	default:
		logEveryN(logEvery, "ingest ignoring message type %q", payload.Type)
		return Event{}, false
	}
}

func toBodyFrame(payload wireMessage) (types.BodyFrame, error) {
	bodies := make([]types.CandidateBody, 0, len(payload.Bodies))
	for _, raw := range payload.Bodies {
		joints := make(map[types.JointName]types.Vector3, len(raw.Joints))
		for name, pos := range raw.Joints {
			if len(pos) != 3 {
				return types.BodyFrame{}, fmt.Errorf("joint %q has %d components", name, len(pos))
			}
			joints[types.JointName(name)] = types.Vector3{X: pos[0], Y: pos[1], Z: pos[2]}
		}
		bodies = append(bodies, types.CandidateBody{
			ID:      raw.ID,
			Tracked: raw.Tracked,
			Joints:  joints,
		})
	}
	return types.BodyFrame{
		Seq:    payload.Seq,
		Time:   payload.Time,
		Bodies: bodies,
	}, nil
}

func toFaceFrame(payload wireMessage) (types.FaceFrame, error) {
	if len(payload.AU) != types.AnimationUnitCount {
		return types.FaceFrame{}, fmt.Errorf("expected %d animation units, got %d", types.AnimationUnitCount, len(payload.AU))
	}
	face := types.FaceFrame{
		Seq:   payload.Seq,
		Time:  payload.Time,
		ID:    payload.ID,
		Pitch: payload.Pitch,
		Yaw:   payload.Yaw,
		Roll:  payload.Roll,
	}
	copy(face.AnimationUnits[:], payload.AU)
	return face, nil
}

var (
	decodeFailures atomic.Uint64
	decodeCount    atomic.Uint64
	decodeNanos    atomic.Uint64
)

// DecodeFailures reports the number of bridge messages that failed to
// decode since process start.
func DecodeFailures() uint64 {
	return decodeFailures.Load()
}

// DecodeTiming reports total decode invocations and cumulative nanoseconds.
func DecodeTiming() (uint64, uint64) {
	return decodeCount.Load(), decodeNanos.Load()
}

var logCounter atomic.Uint64

func logEveryN(n int, format string, args ...any) {
	if logCounter.Add(1)%uint64(n) == 0 {
		log.Printf(format, args...)
	}
}
