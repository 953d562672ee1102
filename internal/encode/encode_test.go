package encode

import (
	"testing"

	"skeltrack-go/internal/types"
)

func TestBodyFullJointSetInCanonicalOrder(t *testing.T) {
	b := types.CandidateBody{
		ID:      7,
		Tracked: true,
		Joints:  make(map[types.JointName]types.Vector3, len(types.JointOrder)),
	}
	for i, joint := range types.JointOrder {
		b.Joints[joint] = types.Vector3{X: float64(i), Y: float64(i) * 2, Z: float64(i) * 3}
	}

	msg := Body(b)
	if msg.ID != 7 {
		t.Fatalf("unexpected id: %d", msg.ID)
	}
	if len(msg.Joints) != len(types.JointOrder) {
		t.Fatalf("expected %d samples, got %d", len(types.JointOrder), len(msg.Joints))
	}
	for i, sample := range msg.Joints {
		if sample.Joint != types.JointOrder[i] {
			t.Fatalf("sample %d: expected %s, got %s", i, types.JointOrder[i], sample.Joint)
		}
		if sample.X != float64(i) || sample.Y != float64(i)*2 || sample.Z != float64(i)*3 {
			t.Fatalf("sample %d: coordinates not passed through: %+v", i, sample)
		}
	}
}

func TestBodyPartialJointSetKeepsCountAndOrder(t *testing.T) {
	b := types.CandidateBody{
		ID: 3,
		Joints: map[types.JointName]types.Vector3{
			types.Head:      {Y: 1.7},
			types.SpineBase: {Z: 2.0},
			types.HandRight: {X: 0.4},
		},
	}

	msg := Body(b)
	if len(msg.Joints) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(msg.Joints))
	}
	want := []types.JointName{types.SpineBase, types.Head, types.HandRight}
	for i, joint := range want {
		if msg.Joints[i].Joint != joint {
			t.Fatalf("sample %d: expected %s, got %s", i, joint, msg.Joints[i].Joint)
		}
	}
}

func TestBodyEmptyJointSet(t *testing.T) {
	msg := Body(types.CandidateBody{ID: 1})
	if len(msg.Joints) != 0 {
		t.Fatalf("expected no samples, got %d", len(msg.Joints))
	}
}

func TestBodyUnknownJointsAppendAfterCanonical(t *testing.T) {
	b := types.CandidateBody{
		ID: 2,
		Joints: map[types.JointName]types.Vector3{
			"zz_custom":     {X: 9},
			types.SpineBase: {Z: 1},
			"aa_custom":     {X: 8},
		},
	}

	msg := Body(b)
	if len(msg.Joints) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(msg.Joints))
	}
	if msg.Joints[0].Joint != types.SpineBase {
		t.Fatalf("canonical joints come first, got %s", msg.Joints[0].Joint)
	}
	if msg.Joints[1].Joint != "aa_custom" || msg.Joints[2].Joint != "zz_custom" {
		t.Fatalf("extras not sorted by name: %s, %s", msg.Joints[1].Joint, msg.Joints[2].Joint)
	}
}

func TestFaceParameterOrdering(t *testing.T) {
	f := types.FaceFrame{ID: 7, Pitch: -4.5, Yaw: 10, Roll: 0.5}
	for i := range f.AnimationUnits {
		f.AnimationUnits[i] = float64(i) / 100
	}

	msg := Face(f)
	if msg.ID != 7 {
		t.Fatalf("unexpected id: %d", msg.ID)
	}
	if len(msg.Params) != 3+types.AnimationUnitCount {
		t.Fatalf("expected %d params, got %d", 3+types.AnimationUnitCount, len(msg.Params))
	}
	if msg.Params[0].Name != "pitch" || msg.Params[0].Value != -4.5 {
		t.Fatalf("param 0: %+v", msg.Params[0])
	}
	if msg.Params[1].Name != "yaw" || msg.Params[2].Name != "roll" {
		t.Fatalf("orientation order wrong: %s, %s", msg.Params[1].Name, msg.Params[2].Name)
	}
	for i, name := range types.AnimationUnitNames {
		p := msg.Params[3+i]
		if p.Name != name {
			t.Fatalf("AU %d: expected %s, got %s", i, name, p.Name)
		}
		if p.Value != float64(i)/100 {
			t.Fatalf("AU %d: value not passed through: %v", i, p.Value)
		}
	}
}
