// Package pipeline sequences one tick of work per arriving frame: timer →
// subject selection → encode → dispatch → telemetry. It is the single
// failure-containment boundary; a panic while processing one frame is
// logged and the tick abandoned, never the session.
package pipeline

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"skeltrack-go/internal/encode"
	"skeltrack-go/internal/ingest"
	"skeltrack-go/internal/telemetry"
	"skeltrack-go/internal/tracker"
	"skeltrack-go/internal/types"
)

// Dispatcher is the outbound side of the pipeline. Satisfied by
// dispatch.Dispatcher.
type Dispatcher interface {
	SendBody(encode.BodyMessage)
	SendFace(encode.FaceMessage)
	StatusText() string
}

// Pipeline owns the per-tick sequencing for the body and face streams.
// The two streams share only the subject tracker and the retained face
// buffer; each is single-writer.
type Pipeline struct {
	tracker *tracker.SubjectTracker
	timer   *telemetry.FrameTimer
	pub     *telemetry.Publisher
	disp    Dispatcher

	// overlay receives OverlaySnapshot pushes for display shells; sends
	// never block, a slow consumer just misses frames.
	overlay chan<- any

	faceFrames     atomic.Uint64
	facesSkipped   atomic.Uint64
	facesDropped   atomic.Uint64
	ticksAbandoned atomic.Uint64

	// Last received face alignment, refreshed in place each face tick.
	// Only the face worker writes it.
	faceMu   sync.Mutex
	lastFace types.FaceFrame
	haveFace bool
}

func New(tr *tracker.SubjectTracker, timer *telemetry.FrameTimer, pub *telemetry.Publisher, disp Dispatcher, overlay chan<- any) *Pipeline {
	return &Pipeline{
		tracker: tr,
		timer:   timer,
		pub:     pub,
		disp:    disp,
		overlay: overlay,
	}
}

// Run consumes bridge events until the context ends. Body and face frames
// are processed on independent workers so the two cadences never block
// each other. Face frames are dropped, not queued, when the face worker
// is still busy; loss notifications are never dropped and take effect in
// the router itself, ahead of any buffered face frame.
func (p *Pipeline) Run(ctx context.Context, events <-chan ingest.Event) {
	bodyCh := make(chan types.BodyFrame, 8)
	faceCh := make(chan types.FaceFrame, 1)

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		defer close(bodyCh)
		defer close(faceCh)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				switch ev.Type {
				case ingest.EventBody:
					select {
					case <-ctx.Done():
						return
					case bodyCh <- ev.Body:
					}
				case ingest.EventFace:
					select {
					case faceCh <- ev.Face:
					default:
						p.facesDropped.Add(1)
					}
				case ingest.EventLost:
					p.HandleLost(ev.LostID)
				}
			}
		}
	}()

	go func() {
		defer wg.Done()
		for frame := range bodyCh {
			p.HandleBody(frame)
		}
	}()

	go func() {
		defer wg.Done()
		for face := range faceCh {
			p.HandleFace(face)
		}
	}()

	wg.Wait()
}

// HandleBody runs one body tick.
func (p *Pipeline) HandleBody(frame types.BodyFrame) {
	defer p.contain("body")

	p.timer.RecordFrame()
	id, ok := p.tracker.Observe(frame.Bodies)
	if ok {
		for _, b := range frame.Bodies {
			if b.ID == id {
				p.disp.SendBody(encode.Body(b))
				break
			}
		}
	}
	p.publishTelemetry()
	p.pushOverlay(frame, id, ok)
}

// HandleFace runs one face tick. The alignment buffer is refreshed even
// when dispatch is skipped so a later consumer sees the latest
// measurement.
func (p *Pipeline) HandleFace(face types.FaceFrame) {
	defer p.contain("face")

	p.faceFrames.Add(1)
	p.faceMu.Lock()
	p.lastFace = face
	p.haveFace = true
	p.faceMu.Unlock()

	id, ok := p.tracker.Current()
	if !ok {
		// No active subject: nothing to address the message to.
		p.facesSkipped.Add(1)
		return
	}
	face.ID = id
	p.disp.SendFace(encode.Face(face))
}

// HandleLost handles the face collaborator's "tracking identity lost"
// notification.
func (p *Pipeline) HandleLost(id int64) {
	defer p.contain("lost")
	log.Printf("tracking identity %d lost, reacquiring", id)
	p.tracker.NotifyLost()
}

// LastFace returns the retained face alignment buffer. Contents are valid
// only until the next face tick refreshes it.
func (p *Pipeline) LastFace() (types.FaceFrame, bool) {
	p.faceMu.Lock()
	defer p.faceMu.Unlock()
	return p.lastFace, p.haveFace
}

// Counters reports face-stream bookkeeping for the status surface.
func (p *Pipeline) Counters() (faceFrames, facesSkipped, facesDropped, ticksAbandoned uint64) {
	return p.faceFrames.Load(), p.facesSkipped.Load(), p.facesDropped.Load(), p.ticksAbandoned.Load()
}

func (p *Pipeline) publishTelemetry() {
	p.pub.Publish(telemetry.Snapshot{
		FramesPerSecond: p.timer.FramesPerSecond(),
		Uptime:          p.timer.Uptime(),
		LastStatus:      p.disp.StatusText(),
		TrackerState:    p.tracker.StateText(),
		BodyFrames:      p.timer.Frames(),
		FaceFrames:      p.faceFrames.Load(),
	})
}

func (p *Pipeline) pushOverlay(frame types.BodyFrame, id int64, ok bool) {
	if p.overlay == nil {
		return
	}
	snapshot := types.OverlaySnapshot{
		Type:     "overlay",
		Seq:      frame.Seq,
		Bodies:   frame.Bodies,
		Active:   ok,
		ActiveID: id,
	}
	select {
	case p.overlay <- snapshot:
	default:
	}
}

// contain is the tick-level panic boundary.
func (p *Pipeline) contain(stream string) {
	if r := recover(); r != nil {
		p.ticksAbandoned.Add(1)
		log.Printf("%s tick abandoned: %v", stream, r)
	}
}
