package tracker

import (
	"fmt"
	"math"
	"sync"

	"skeltrack-go/internal/types"
)

// FaceTarget is the face-tracking collaborator. The tracker keeps its
// target identity equal to the active subject at all times.
type FaceTarget interface {
	SetTarget(id int64)
	ClearTarget()
}

// SubjectTracker selects and maintains the single body identity reported
// on each tick. Two states: unacquired, or tracking one identity.
//
// Transition rules per candidate list:
//   - unacquired: acquire the tracked candidate closest to the sensor
//     origin, if any;
//   - tracking(id): keep id while it appears tracked in the list,
//     otherwise reacquire by the same closest-body rule, falling back to
//     unacquired when nothing is tracked.
//
// An external "tracking lost" notification forces unacquired immediately;
// the next tick reacquires.
type SubjectTracker struct {
	mu       sync.Mutex
	acquired bool
	activeID int64
	face     FaceTarget
}

// New returns a tracker. face may be nil when no face collaborator exists
// (simulator runs, tests).
func New(face FaceTarget) *SubjectTracker {
	return &SubjectTracker{face: face}
}

// Observe runs one tick of the selection state machine over a fresh
// candidate list and reports the active subject after the transition.
func (t *SubjectTracker) Observe(bodies []types.CandidateBody) (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.acquired {
		for _, b := range bodies {
			if b.ID == t.activeID && b.Tracked {
				return t.activeID, true
			}
		}
	}

	id, ok := selectClosest(bodies)
	t.setLocked(id, ok)
	return t.activeID, t.acquired
}

// NotifyLost handles the asynchronous "tracking identity lost" signal from
// the face collaborator. Drops straight to unacquired regardless of state.
func (t *SubjectTracker) NotifyLost() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setLocked(0, false)
}

// Current reports the active subject without running a transition.
func (t *SubjectTracker) Current() (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.activeID, t.acquired
}

// StateText returns a short diagnostic description of the tracker state.
func (t *SubjectTracker) StateText() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.acquired {
		return "unacquired"
	}
	return fmt.Sprintf("tracking %d", t.activeID)
}

// setLocked applies a state change and pushes the new target to the face
// collaborator when the state actually changed. Caller holds t.mu.
func (t *SubjectTracker) setLocked(id int64, ok bool) {
	if ok == t.acquired && (!ok || id == t.activeID) {
		return
	}
	t.acquired = ok
	t.activeID = id
	if t.face == nil {
		return
	}
	if ok {
		t.face.SetTarget(id)
	} else {
		t.face.ClearTarget()
	}
}

// selectClosest picks the tracked candidate whose reference joint is
// nearest the sensor origin. Ties go to the first candidate in list order;
// that is deterministic but arbitrary, not something to rely on. A tracked
// candidate missing its reference joint sorts last.
func selectClosest(bodies []types.CandidateBody) (int64, bool) {
	best := math.MaxFloat64
	var bestID int64
	found := false
	for _, b := range bodies {
		if !b.Tracked {
			continue
		}
		d := referenceDistance(b)
		if !found || d < best {
			best = d
			bestID = b.ID
			found = true
		}
	}
	return bestID, found
}

func referenceDistance(b types.CandidateBody) float64 {
	p, ok := b.Joints[types.ReferenceJoint]
	if !ok {
		return math.MaxFloat64
	}
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}
