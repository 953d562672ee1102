// Package encode flattens sensor measurements into the ordered payloads
// the dispatcher puts on the wire. Both encoders are pure: sensor-space
// values pass through unchanged and no input can fail.
package encode

import (
	"sort"

	"skeltrack-go/internal/types"
)

// JointSample is one (joint, position) entry of a body payload.
type JointSample struct {
	Joint types.JointName
	X     float64
	Y     float64
	Z     float64
}

// BodyMessage is the flattened joint set of one candidate body, ordered by
// types.JointOrder. Joints absent from the candidate are skipped, so a
// candidate with K joints yields exactly K samples.
type BodyMessage struct {
	ID     int64
	Joints []JointSample
}

// FaceParam is one named scalar of a face payload.
type FaceParam struct {
	Name  string
	Value float64
}

// FaceMessage is the flattened face alignment: head orientation angles
// first (pitch, yaw, roll), then the animation units in canonical order.
type FaceMessage struct {
	ID     int64
	Params []FaceParam
}

// Body maps a candidate's joint set into canonical order.
func Body(b types.CandidateBody) BodyMessage {
	msg := BodyMessage{
		ID:     b.ID,
		Joints: make([]JointSample, 0, len(b.Joints)),
	}
	seen := make(map[types.JointName]bool, len(b.Joints))
	for _, joint := range types.JointOrder {
		p, ok := b.Joints[joint]
		if !ok {
			continue
		}
		seen[joint] = true
		msg.Joints = append(msg.Joints, JointSample{
			Joint: joint,
			X:     p.X,
			Y:     p.Y,
			Z:     p.Z,
		})
	}

	// Joints outside the canonical vocabulary still go out, sorted by
	// name after the canonical block, so no measurement is ever dropped.
	var extra []types.JointName
	for joint := range b.Joints {
		if !seen[joint] {
			extra = append(extra, joint)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	for _, joint := range extra {
		p := b.Joints[joint]
		msg.Joints = append(msg.Joints, JointSample{Joint: joint, X: p.X, Y: p.Y, Z: p.Z})
	}
	return msg
}

// Face maps a face alignment into its fixed parameter ordering.
func Face(f types.FaceFrame) FaceMessage {
	msg := FaceMessage{
		ID:     f.ID,
		Params: make([]FaceParam, 0, 3+types.AnimationUnitCount),
	}
	msg.Params = append(msg.Params,
		FaceParam{Name: "pitch", Value: f.Pitch},
		FaceParam{Name: "yaw", Value: f.Yaw},
		FaceParam{Name: "roll", Value: f.Roll},
	)
	for i, name := range types.AnimationUnitNames {
		msg.Params = append(msg.Params, FaceParam{Name: name, Value: f.AnimationUnits[i]})
	}
	return msg
}
