// Package sse streams adjudication progress to connected clients over
// Server-Sent Events. The hub is plain net/http infrastructure; the
// pipeline only sees it through the progress.Sink it exposes.
package sse

import (
	"encoding/json"

	"github.com/Gajesh2007/ai-debate-judge/logger"
	"github.com/Gajesh2007/ai-debate-judge/progress"
)

// HubSink adapts a Hub to the pipeline's progress.Sink. Each published
// event is broadcast to the clients following the run.
type HubSink struct {
	hub   *Hub
	runID string
}

// NewHubSink creates a sink that broadcasts to clients whose ID matches
// "run:<runID>".
func NewHubSink(hub *Hub, runID string) *HubSink {
	return &HubSink{hub: hub, runID: runID}
}

// Publish serializes the event and broadcasts it to the run's clients.
func (s *HubSink) Publish(e progress.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		logger.Error("[SSE] Failed to encode progress event", map[string]interface{}{
			"step":  string(e.Step),
			"error": err.Error(),
		})
		return
	}
	s.hub.BroadcastToPattern("run:"+s.runID, data)
}

var _ progress.Sink = (*HubSink)(nil)
