package telemetry

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// FrameTimer tracks wall-clock time since the first recorded frame and a
// frames-per-second estimate (total frames over elapsed time). Accessors
// return zero values before any frame is recorded.
type FrameTimer struct {
	mu     sync.Mutex
	now    func() time.Time
	frames uint64
	first  time.Time
	last   time.Time
}

func NewFrameTimer() *FrameTimer {
	return &FrameTimer{now: time.Now}
}

// NewFrameTimerWithClock injects a clock for tests.
func NewFrameTimerWithClock(now func() time.Time) *FrameTimer {
	return &FrameTimer{now: now}
}

// RecordFrame counts one arriving body frame.
func (t *FrameTimer) RecordFrame() {
	t.mu.Lock()
	defer t.mu.Unlock()
	ts := t.now()
	if t.frames == 0 {
		t.first = ts
	}
	t.last = ts
	t.frames++
}

// FramesPerSecond returns the smoothed rate estimate. Always finite and
// non-negative; when every frame so far shares one timestamp the elapsed
// time is zero and the frame count itself is returned.
func (t *FrameTimer) FramesPerSecond() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.frames == 0 {
		return 0
	}
	elapsed := t.last.Sub(t.first).Seconds()
	if elapsed <= 0 {
		return float64(t.frames)
	}
	return float64(t.frames) / elapsed
}

// Uptime returns elapsed time since the first recorded frame.
func (t *FrameTimer) Uptime() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.frames == 0 {
		return 0
	}
	return t.now().Sub(t.first)
}

// Frames returns the total number of recorded frames.
func (t *FrameTimer) Frames() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frames
}

// Snapshot is the telemetry published once per body tick for the status
// surface.
type Snapshot struct {
	SessionID       string        `json:"session_id"`
	FramesPerSecond float64       `json:"fps"`
	Uptime          time.Duration `json:"uptime"`
	LastStatus      string        `json:"last_status"`
	TrackerState    string        `json:"tracker_state"`
	BodyFrames      uint64        `json:"body_frames"`
	FaceFrames      uint64        `json:"face_frames"`
}

// FPSText renders the frame rate the way the display shell shows it.
func (s Snapshot) FPSText() string {
	return fmt.Sprintf("%.1f fps", s.FramesPerSecond)
}

// UptimeText renders the uptime rounded to whole seconds.
func (s Snapshot) UptimeText() string {
	return s.Uptime.Round(time.Second).String()
}

// Publisher holds the latest snapshot behind an atomic swap so status
// consumers never contend with the frame path.
type Publisher struct {
	session string
	value   atomic.Value
}

func NewPublisher() *Publisher {
	p := &Publisher{session: uuid.NewString()}
	p.value.Store(Snapshot{SessionID: p.session})
	return p
}

// Publish replaces the visible snapshot wholesale.
func (p *Publisher) Publish(s Snapshot) {
	s.SessionID = p.session
	p.value.Store(s)
}

// Last returns the most recently published snapshot.
func (p *Publisher) Last() Snapshot {
	return p.value.Load().(Snapshot)
}
