package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/meeting-manager/internal/core/events"
)

// Deliverer pushes a message to a Zalo account.
type Deliverer interface {
	Deliver(ctx context.Context, zaloID, message string) error
}

// ZaloDeliverer stands in for the Zalo OA API. With sending disabled it only
// logs what would have been delivered.
type ZaloDeliverer struct {
	enabled bool
	logger  *slog.Logger
}

func NewZaloDeliverer(enabled bool, logger *slog.Logger) *ZaloDeliverer {
	return &ZaloDeliverer{enabled: enabled, logger: logger}
}

func (z *ZaloDeliverer) Deliver(ctx context.Context, zaloID, message string) error {
	if zaloID == "" {
		return fmt.Errorf("zalo delivery: empty zalo id")
	}
	if !z.enabled {
		z.logger.Debug("zalo delivery disabled, skipping", "zalo_id", zaloID)
		return nil
	}
	// TODO: call the Zalo OA message endpoint once credentials are provisioned.
	z.logger.Info("zalo message queued", "zalo_id", zaloID, "length", len(message))
	return nil
}

type EventHandler struct {
	deliverer Deliverer
	logger    *slog.Logger
}

func NewEventHandler(deliverer Deliverer, logger *slog.Logger) *EventHandler {
	return &EventHandler{deliverer: deliverer, logger: logger}
}

func (h *EventHandler) HandleNotificationRequested(ctx context.Context, event events.Event) error {
	evt, ok := event.(*events.NotificationRequestedEvent)
	if !ok {
		h.logger.Error("invalid event type for notification handler", "event_type", event.EventType())
		return fmt.Errorf("expected NotificationRequestedEvent, got %T", event)
	}

	if err := h.deliverer.Deliver(ctx, evt.ZaloID, evt.Message); err != nil {
		return fmt.Errorf("deliver notification %d: %w", evt.NotificationID, err)
	}
	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeNotificationRequested, h.HandleNotificationRequested)
}
