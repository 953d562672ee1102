package dispatch

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/hypebeast/go-osc/osc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skeltrack-go/internal/config"
	"skeltrack-go/internal/encode"
	"skeltrack-go/internal/types"
)

type fakeSender struct {
	name     string
	err      error
	received []*osc.Message
}

func (f *fakeSender) send(msg *osc.Message) error {
	if f.err != nil {
		return f.err
	}
	f.received = append(f.received, msg)
	return nil
}

func (f *fakeSender) target() string { return f.name }

func TestSendBodyMessageShape(t *testing.T) {
	sink := &fakeSender{name: "127.0.0.1:7000"}
	d := &Dispatcher{senders: []sender{sink}}

	d.SendBody(encode.Body(types.CandidateBody{
		ID: 7,
		Joints: map[types.JointName]types.Vector3{
			types.SpineBase: {X: 0.1, Y: 0.2, Z: 1.5},
			types.Head:      {X: 0.1, Y: 0.9, Z: 1.4},
		},
	}))

	require.Len(t, sink.received, 1)
	msg := sink.received[0]
	assert.Equal(t, SkeletonAddress, msg.Address)
	// id + 2 joints × (name, x, y, z)
	require.Len(t, msg.Arguments, 1+2*4)
	assert.Equal(t, int32(7), msg.Arguments[0])
	assert.Equal(t, "spine_base", msg.Arguments[1])
	assert.Equal(t, float32(1.5), msg.Arguments[4])
	assert.Equal(t, "head", msg.Arguments[5])
}

func TestSendFaceMessageShape(t *testing.T) {
	sink := &fakeSender{name: "127.0.0.1:7000"}
	d := &Dispatcher{senders: []sender{sink}}

	f := types.FaceFrame{ID: 9, Pitch: -3, Yaw: 8, Roll: 1}
	f.AnimationUnits[0] = 0.75
	d.SendFace(encode.Face(f))

	require.Len(t, sink.received, 1)
	msg := sink.received[0]
	assert.Equal(t, FaceAddress, msg.Address)
	require.Len(t, msg.Arguments, 1+3+types.AnimationUnitCount)
	assert.Equal(t, int32(9), msg.Arguments[0])
	assert.Equal(t, float32(-3), msg.Arguments[1])
	assert.Equal(t, float32(0.75), msg.Arguments[4])
}

func TestOneFailingDestinationDoesNotStopOthers(t *testing.T) {
	good1 := &fakeSender{name: "10.0.0.1:7000"}
	bad := &fakeSender{name: "10.0.0.2:7000", err: errors.New("network is unreachable")}
	good2 := &fakeSender{name: "10.0.0.3:7000"}
	d := &Dispatcher{senders: []sender{good1, bad, good2}}

	d.SendBody(encode.BodyMessage{ID: 1})

	assert.Len(t, good1.received, 1)
	assert.Len(t, good2.received, 1)

	sent, failed := d.Counts()
	assert.Equal(t, uint64(2), sent)
	assert.Equal(t, uint64(1), failed)

	status := d.StatusText()
	assert.Contains(t, status, "10.0.0.2:7000")
	assert.Contains(t, status, "1/3")
}

func TestStatusTextOnSuccess(t *testing.T) {
	d := &Dispatcher{
		lastStatus: "no messages sent yet",
		senders:    []sender{&fakeSender{name: "a"}, &fakeSender{name: "b"}},
	}
	assert.Equal(t, "no messages sent yet", d.StatusText())

	d.SendFace(encode.FaceMessage{ID: 2})
	status := d.StatusText()
	assert.True(t, strings.HasPrefix(status, "sent /face"), status)
	assert.Contains(t, status, "2 destination(s)")
}

func TestSendFailureLoggingThrottled(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(prev)

	bad := &fakeSender{name: "10.0.0.2:7000", err: errors.New("network is unreachable")}
	d := &Dispatcher{senders: []sender{bad}, logEvery: 10}

	for i := 0; i < 30; i++ {
		d.SendBody(encode.BodyMessage{ID: 1})
	}

	_, failed := d.Counts()
	assert.Equal(t, uint64(30), failed, "every failure is still counted")
	assert.Equal(t, 3, strings.Count(buf.String(), "osc send to 10.0.0.2:7000 failed"))
}

func TestNewBuildsOneSenderPerHost(t *testing.T) {
	d := New(config.Destinations{Hosts: []string{"192.168.0.10", "192.168.0.11"}, Port: 7000})
	require.Len(t, d.senders, 2)
	assert.Equal(t, "192.168.0.10:7000", d.senders[0].target())
	assert.Equal(t, "192.168.0.11:7000", d.senders[1].target())
}
