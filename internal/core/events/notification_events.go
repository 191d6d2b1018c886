package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeNotificationRequested = "notification.requested"
)

// NotificationRequestedEvent asks delivery channels to push a recorded
// notification to a user.
type NotificationRequestedEvent struct {
	BaseEvent
	NotificationID int64  `json:"notification_id"`
	MeetingID      int64  `json:"meeting_id"`
	UserID         int64  `json:"user_id"`
	ZaloID         string `json:"zalo_id"`
	Kind           string `json:"kind"`
	Message        string `json:"message"`
}

func NewNotificationRequestedEvent(notificationID, meetingID, userID int64, zaloID, kind, message string) *NotificationRequestedEvent {
	return &NotificationRequestedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeNotificationRequested,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"notification_id": notificationID,
				"meeting_id":      meetingID,
				"user_id":         userID,
				"kind":            kind,
			},
		},
		NotificationID: notificationID,
		MeetingID:      meetingID,
		UserID:         userID,
		ZaloID:         zaloID,
		Kind:           kind,
		Message:        message,
	}
}
