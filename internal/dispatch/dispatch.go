// Package dispatch turns encoded payloads into OSC messages and fires
// them at every configured destination over UDP. Sends are
// fire-and-forget: a failing destination is logged and counted, never
// retried, and never stops the pipeline.
package dispatch

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/hypebeast/go-osc/osc"

	"skeltrack-go/internal/config"
	"skeltrack-go/internal/encode"
)

// OSC address patterns. Argument ordering within each message is the wire
// contract; see the encode package for the canonical orderings.
const (
	SkeletonAddress = "/skeleton"
	FaceAddress     = "/face"
)

// sender is one transmit target. Split out so tests can stand in for the
// UDP client.
type sender interface {
	send(msg *osc.Message) error
	target() string
}

type oscSender struct {
	client *osc.Client
	addr   string
}

func (s *oscSender) send(msg *osc.Message) error { return s.client.Send(msg) }
func (s *oscSender) target() string              { return s.addr }

// Dispatcher fans encoded messages out to a fixed destination list.
type Dispatcher struct {
	senders  []sender
	logEvery int

	sent     atomic.Uint64
	failed   atomic.Uint64
	failLogs atomic.Uint64

	mu         sync.Mutex
	lastStatus string
}

// New builds a dispatcher for the configured destinations. The list is
// immutable for the session.
func New(dests config.Destinations) *Dispatcher {
	return NewWithLogEvery(dests, 1)
}

// NewWithLogEvery builds a dispatcher that logs only every Nth send
// failure. An unreachable destination fails once per message per frame,
// so the unthrottled path floods the log at frame rate.
func NewWithLogEvery(dests config.Destinations, logEvery int) *Dispatcher {
	if logEvery < 1 {
		logEvery = 1
	}
	d := &Dispatcher{lastStatus: "no messages sent yet", logEvery: logEvery}
	for _, host := range dests.Hosts {
		d.senders = append(d.senders, &oscSender{
			client: osc.NewClient(host, dests.Port),
			addr:   fmt.Sprintf("%s:%d", host, dests.Port),
		})
	}
	return d
}

// SendBody transmits one /skeleton message per destination: int32 body id,
// then (string joint, float32 x, float32 y, float32 z) per sample.
func (d *Dispatcher) SendBody(body encode.BodyMessage) {
	msg := osc.NewMessage(SkeletonAddress)
	msg.Append(int32(body.ID))
	for _, j := range body.Joints {
		msg.Append(string(j.Joint))
		msg.Append(float32(j.X))
		msg.Append(float32(j.Y))
		msg.Append(float32(j.Z))
	}
	d.transmit(msg)
}

// SendFace transmits one /face message per destination: int32 body id,
// then one float32 per parameter in encode.Face order.
func (d *Dispatcher) SendFace(face encode.FaceMessage) {
	msg := osc.NewMessage(FaceAddress)
	msg.Append(int32(face.ID))
	for _, p := range face.Params {
		msg.Append(float32(p.Value))
	}
	d.transmit(msg)
}

// StatusText reports the outcome of the most recent transmission.
func (d *Dispatcher) StatusText() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastStatus
}

// Counts reports total per-destination sends and failures.
func (d *Dispatcher) Counts() (sent, failed uint64) {
	return d.sent.Load(), d.failed.Load()
}

func (d *Dispatcher) transmit(msg *osc.Message) {
	var failures int
	var lastErr error
	var lastTarget string
	for _, s := range d.senders {
		if err := s.send(msg); err != nil {
			failures++
			lastErr = err
			lastTarget = s.target()
			d.failed.Add(1)
			d.logFailure(s.target(), err)
			continue
		}
		d.sent.Add(1)
	}

	status := fmt.Sprintf("sent %s to %d destination(s)", msg.Address, len(d.senders))
	if failures > 0 {
		status = fmt.Sprintf("%s: %d/%d sends failed, last %s: %v",
			msg.Address, failures, len(d.senders), lastTarget, lastErr)
	}
	d.mu.Lock()
	d.lastStatus = status
	d.mu.Unlock()
}

func (d *Dispatcher) logFailure(target string, err error) {
	every := d.logEvery
	if every < 1 {
		every = 1
	}
	if d.failLogs.Add(1)%uint64(every) == 0 {
		log.Printf("osc send to %s failed: %v", target, err)
	}
}
