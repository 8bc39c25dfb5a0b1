package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/csv-manager/internal/events"
	"github.com/spec-kit/csv-manager/internal/ws"
)

// BroadcastWorker forwards file events from the dispatcher to the websocket
// hub so connected viewers learn about uploads and deletions without polling.
type BroadcastWorker struct {
	dispatcher events.Dispatcher
	hub        *ws.Hub
	logger     *zap.Logger
}

// NewBroadcastWorker creates the worker.
func NewBroadcastWorker(dispatcher events.Dispatcher, hub *ws.Hub, logger *zap.Logger) *BroadcastWorker {
	return &BroadcastWorker{dispatcher: dispatcher, hub: hub, logger: logger}
}

// Start subscribes to file events.
func (w *BroadcastWorker) Start() {
	if w.dispatcher == nil || w.hub == nil {
		return
	}
	w.dispatcher.Subscribe(events.EventFileUploaded, w.handleFileUploaded)
	w.dispatcher.Subscribe(events.EventFileDeleted, w.handleFileDeleted)
}

func (w *BroadcastWorker) handleFileUploaded(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.FileUploadedPayload)
	if !ok {
		w.logger.Warn("unexpected payload for file upload event", zap.String("event_id", event.ID))
		return nil
	}
	w.hub.Broadcast(ws.NewUploadedMessage(payload.File))
	return nil
}

func (w *BroadcastWorker) handleFileDeleted(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.FileDeletedPayload)
	if !ok {
		w.logger.Warn("unexpected payload for file delete event", zap.String("event_id", event.ID))
		return nil
	}
	w.hub.Broadcast(ws.NewDeletedMessage(payload.FileID))
	return nil
}
