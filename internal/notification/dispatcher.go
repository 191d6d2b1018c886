package notification

import (
	"context"
	"log/slog"
	"time"

	notificationDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/notification"
	"github.com/frahmantamala/meeting-manager/internal/core/events"
)

type RepositoryAPI interface {
	CreateBatch(ctx context.Context, rows []*notificationDatamodel.Notification) error
	ListForUser(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]*notificationDatamodel.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, userID, id int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	// SentSince reports whether a notification of the type went out for the
	// meeting at or after since.
	SentSince(ctx context.Context, meetingID int64, t string, since time.Time) (bool, error)
}

// Dispatcher records commands as inbox rows and publishes delivery requests
// for the ones that can reach Zalo. Delivery runs before Dispatch returns; a
// failed delivery is logged and leaves the inbox row in place.
type Dispatcher struct {
	repo   RepositoryAPI
	bus    *events.EventBus
	logger *slog.Logger
}

func NewDispatcher(repo RepositoryAPI, bus *events.EventBus, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{repo: repo, bus: bus, logger: logger}
}

func (d *Dispatcher) Dispatch(ctx context.Context, commands []Command) error {
	if len(commands) == 0 {
		return nil
	}

	rows := make([]*notificationDatamodel.Notification, 0, len(commands))
	for _, cmd := range commands {
		rows = append(rows, ToDataModel(cmd))
	}
	if err := d.repo.CreateBatch(ctx, rows); err != nil {
		d.logger.Error("failed to record notifications", "error", err, "count", len(rows))
		return err
	}

	published := 0
	for i, cmd := range commands {
		if !cmd.Deliverable() || d.bus == nil {
			continue
		}
		evt := events.NewNotificationRequestedEvent(rows[i].ID, cmd.MeetingID, cmd.UserID, *cmd.ZaloID, string(cmd.Type), cmd.Message)
		if err := d.bus.PublishSync(ctx, evt); err != nil {
			d.logger.Warn("notification delivery failed", "error", err, "notification_id", rows[i].ID)
			continue
		}
		published++
	}

	d.logger.Info("notifications dispatched", "recorded", len(rows), "zalo_requests", published)
	return nil
}
