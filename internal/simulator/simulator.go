// Package simulator produces synthetic sensor-bridge events so the
// pipeline can run without hardware: walking skeletons at different
// distances, face alignments for the nearest walker, and periodic
// tracking-loss events.
package simulator

import (
	"context"
	"math"
	"math/rand"
	"time"

	"skeltrack-go/internal/ingest"
	"skeltrack-go/internal/types"
)

// Joint offsets from the spine-base root for a standing figure, metres.
var skeletonOffsets = map[types.JointName]types.Vector3{
	types.SpineBase:     {},
	types.SpineMid:      {Y: 0.30},
	types.SpineShoulder: {Y: 0.55},
	types.Neck:          {Y: 0.65},
	types.Head:          {Y: 0.80},
	types.ShoulderLeft:  {X: -0.20, Y: 0.55},
	types.ElbowLeft:     {X: -0.25, Y: 0.30},
	types.WristLeft:     {X: -0.28, Y: 0.05},
	types.HandLeft:      {X: -0.29, Y: -0.02},
	types.HandTipLeft:   {X: -0.30, Y: -0.08},
	types.ThumbLeft:     {X: -0.26, Y: -0.04},
	types.ShoulderRight: {X: 0.20, Y: 0.55},
	types.ElbowRight:    {X: 0.25, Y: 0.30},
	types.WristRight:    {X: 0.28, Y: 0.05},
	types.HandRight:     {X: 0.29, Y: -0.02},
	types.HandTipRight:  {X: 0.30, Y: -0.08},
	types.ThumbRight:    {X: 0.26, Y: -0.04},
	types.HipLeft:       {X: -0.10, Y: -0.05},
	types.KneeLeft:      {X: -0.11, Y: -0.50},
	types.AnkleLeft:     {X: -0.12, Y: -0.90},
	types.FootLeft:      {X: -0.12, Y: -0.95, Z: 0.10},
	types.HipRight:      {X: 0.10, Y: -0.05},
	types.KneeRight:     {X: 0.11, Y: -0.50},
	types.AnkleRight:    {X: 0.12, Y: -0.90},
	types.FootRight:     {X: 0.12, Y: -0.95, Z: 0.10},
}

type walker struct {
	id     int64
	radius float64 // orbit radius, metres from sensor
	speed  float64 // radians per second
	phase  float64
}

// Stream emits synthetic bridge events: body frames at acqRate, a face
// frame every other body frame, and a scripted loss event roughly every
// ten seconds.
func Stream(ctx context.Context, acqRate float64) <-chan ingest.Event {
	out := make(chan ingest.Event)
	go func() {
		defer close(out)

		if acqRate <= 0 {
			acqRate = 30
		}
		ticker := time.NewTicker(time.Duration(float64(time.Second) / acqRate))
		defer ticker.Stop()

		walkers := []walker{
			{id: 1, radius: 2.0, speed: 0.6},
			{id: 2, radius: 3.5, speed: -0.4, phase: math.Pi / 2},
		}
		lossEvery := int(acqRate * 10)
		if lossEvery < 1 {
			lossEvery = 1
		}

		var seq uint64
		start := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			seq++
			t := time.Since(start).Seconds()
			now := float64(time.Now().UnixNano()) / 1e9

			bodies := make([]types.CandidateBody, 0, len(walkers)+1)
			for _, w := range walkers {
				bodies = append(bodies, w.candidate(t))
			}
			// An untracked detection flickers in and out, as real sensors
			// report half-seen figures at the edge of the field of view.
			if seq%7 < 3 {
				bodies = append(bodies, types.CandidateBody{ID: 6, Tracked: false})
			}

			if !emit(ctx, out, ingest.Event{
				Type: ingest.EventBody,
				Body: types.BodyFrame{Seq: seq, Time: now, Bodies: bodies},
			}) {
				return
			}

			if seq%2 == 0 {
				face := syntheticFace(seq, now, t, closest(walkers))
				if !emit(ctx, out, ingest.Event{Type: ingest.EventFace, Face: face}) {
					return
				}
			}

			if seq%uint64(lossEvery) == 0 {
				if !emit(ctx, out, ingest.Event{
					Type:   ingest.EventLost,
					LostID: closest(walkers),
				}) {
					return
				}
			}
		}
	}()

	return out
}

func emit(ctx context.Context, out chan<- ingest.Event, ev ingest.Event) bool {
	select {
	case <-ctx.Done():
		return false
	case out <- ev:
		return true
	}
}

func (w walker) candidate(t float64) types.CandidateBody {
	angle := w.phase + w.speed*t
	root := types.Vector3{
		X: w.radius * math.Sin(angle),
		Y: 0,
		Z: w.radius * math.Cos(angle),
	}
	swing := 0.08 * math.Sin(2*math.Pi*t)

	joints := make(map[types.JointName]types.Vector3, len(skeletonOffsets))
	for joint, off := range skeletonOffsets {
		p := types.Vector3{
			X: root.X + off.X,
			Y: root.Y + off.Y,
			Z: root.Z + off.Z,
		}
		switch joint {
		case types.WristLeft, types.HandLeft, types.HandTipLeft, types.ThumbLeft:
			p.Z += swing
		case types.WristRight, types.HandRight, types.HandTipRight, types.ThumbRight:
			p.Z -= swing
		}
		joints[joint] = p
	}
	return types.CandidateBody{ID: w.id, Tracked: true, Joints: joints}
}

func closest(walkers []walker) int64 {
	best := math.MaxFloat64
	var id int64
	for _, w := range walkers {
		if w.radius < best {
			best = w.radius
			id = w.id
		}
	}
	return id
}

func syntheticFace(seq uint64, now, t float64, id int64) types.FaceFrame {
	face := types.FaceFrame{
		Seq:   seq,
		Time:  now,
		ID:    id,
		Pitch: 4 * math.Sin(t/3),
		Yaw:   15 * math.Sin(t/2),
		Roll:  2 * math.Sin(t/5),
	}
	for i := range face.AnimationUnits {
		v := 0.5 + 0.5*math.Sin(t+float64(i)) + rand.Float64()*0.05
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		face.AnimationUnits[i] = v
	}
	return face
}
