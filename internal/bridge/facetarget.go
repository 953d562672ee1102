package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// FaceTargetPusher forwards active-subject changes to the bridge's face
// tracker (POST /face/target). SetTarget and ClearTarget never block the
// frame path: the newest update wins and older pending ones are coalesced
// away; the HTTP call happens on the Run worker.
type FaceTargetPusher struct {
	baseURL string
	client  *http.Client
	updates chan targetUpdate
}

type targetUpdate struct {
	ID     int64 `json:"id"`
	Active bool  `json:"active"`
}

func NewFaceTargetPusher(baseURL string) *FaceTargetPusher {
	return &FaceTargetPusher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 900 * time.Millisecond},
		updates: make(chan targetUpdate, 1),
	}
}

// SetTarget points the bridge's face tracker at a body identity.
func (p *FaceTargetPusher) SetTarget(id int64) {
	p.enqueue(targetUpdate{ID: id, Active: true})
}

// ClearTarget tells the bridge there is no subject to track.
func (p *FaceTargetPusher) ClearTarget() {
	p.enqueue(targetUpdate{Active: false})
}

func (p *FaceTargetPusher) enqueue(update targetUpdate) {
	for {
		select {
		case p.updates <- update:
			return
		default:
			// Drop the stale pending update and retry with the new one.
			select {
			case <-p.updates:
			default:
			}
		}
	}
}

// Run posts queued target updates until the context ends.
func (p *FaceTargetPusher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case update := <-p.updates:
			if err := p.post(ctx, update); err != nil {
				log.Printf("face target push failed: %v", err)
			}
		}
	}
}

func (p *FaceTargetPusher) post(ctx context.Context, update targetUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/face/target", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
