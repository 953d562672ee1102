package ingest

import (
	"testing"

	"github.com/fxamacker/cbor/v2"

	"skeltrack-go/internal/types"
)

func TestDecodeMessageBody(t *testing.T) {
	msg := map[string]any{
		"type": "body",
		"seq":  42,
		"time": 1.25,
		"bodies": []any{
			map[string]any{
				"id":      int64(7),
				"tracked": true,
				"joints": map[string]any{
					"spine_base": []any{0.1, 0.2, 1.5},
					"head":       []any{0.1, 0.9, 1.4},
				},
			},
			map[string]any{
				"id":      int64(9),
				"tracked": false,
				"joints":  map[string]any{},
			},
		},
	}

	payload, err := cbor.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	event, ok := decodeMessage(payload, 1)
	if !ok {
		t.Fatalf("decodeMessage returned ok=false")
	}
	if event.Type != EventBody {
		t.Fatalf("unexpected type: %q", event.Type)
	}
	frame := event.Body
	if frame.Seq != 42 {
		t.Fatalf("unexpected seq: %d", frame.Seq)
	}
	if frame.Time != 1.25 {
		t.Fatalf("unexpected time: %v", frame.Time)
	}
	if len(frame.Bodies) != 2 {
		t.Fatalf("unexpected body count: %d", len(frame.Bodies))
	}
	if frame.Bodies[0].ID != 7 || !frame.Bodies[0].Tracked {
		t.Fatalf("unexpected first body: %+v", frame.Bodies[0])
	}
	spine, ok := frame.Bodies[0].Joints[types.SpineBase]
	if !ok {
		t.Fatalf("missing spine_base joint")
	}
	if spine.Z != 1.5 {
		t.Fatalf("unexpected spine_base: %+v", spine)
	}
	if frame.Bodies[1].Tracked {
		t.Fatalf("second body should be untracked")
	}
}

func TestDecodeMessageFace(t *testing.T) {
	au := make([]any, types.AnimationUnitCount)
	for i := range au {
		au[i] = float64(i) / 10
	}
	msg := map[string]any{
		"type":  "face",
		"seq":   3,
		"time":  2.5,
		"id":    int64(7),
		"pitch": -5.0,
		"yaw":   12.5,
		"roll":  0.25,
		"au":    au,
	}

	payload, err := cbor.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	event, ok := decodeMessage(payload, 1)
	if !ok {
		t.Fatalf("decodeMessage returned ok=false")
	}
	if event.Type != EventFace {
		t.Fatalf("unexpected type: %q", event.Type)
	}
	face := event.Face
	if face.ID != 7 {
		t.Fatalf("unexpected id: %d", face.ID)
	}
	if face.Yaw != 12.5 {
		t.Fatalf("unexpected yaw: %v", face.Yaw)
	}
	if face.AnimationUnits[16] != 1.6 {
		t.Fatalf("unexpected last AU: %v", face.AnimationUnits[16])
	}
}

func TestDecodeMessageFaceBadAUCount(t *testing.T) {
	msg := map[string]any{
		"type": "face",
		"id":   int64(7),
		"au":   []any{0.1, 0.2},
	}
	payload, err := cbor.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if _, ok := decodeMessage(payload, 1); ok {
		t.Fatalf("short AU array should be rejected")
	}
}

func TestDecodeMessageLost(t *testing.T) {
	payload, err := cbor.Marshal(map[string]any{"type": "lost", "id": int64(4)})
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	event, ok := decodeMessage(payload, 1)
	if !ok {
		t.Fatalf("decodeMessage returned ok=false")
	}
	if event.Type != EventLost || event.LostID != 4 {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestDecodeMessageUnknownType(t *testing.T) {
	payload, err := cbor.Marshal(map[string]any{"type": "telemetry"})
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if _, ok := decodeMessage(payload, 1); ok {
		t.Fatalf("unknown type should be skipped")
	}
}

func TestDecodeMessageBadJointShape(t *testing.T) {
	msg := map[string]any{
		"type": "body",
		"bodies": []any{
			map[string]any{
				"id":      int64(1),
				"tracked": true,
				"joints":  map[string]any{"head": []any{1.0, 2.0}},
			},
		},
	}
	payload, err := cbor.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if _, ok := decodeMessage(payload, 1); ok {
		t.Fatalf("two-component joint should be rejected")
	}
}
