package notification

import (
	"context"
	"log/slog"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Service is the per-user inbox over recorded notifications.
type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

type InboxQuery struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}

func (q *InboxQuery) normalize() {
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
}

func (s *Service) Inbox(ctx context.Context, userID int64, q InboxQuery) (*InboxResponse, error) {
	q.normalize()

	rows, err := s.repo.ListForUser(ctx, userID, q.UnreadOnly, q.Limit, q.Offset)
	if err != nil {
		s.logger.Error("failed to list notifications", "error", err, "user_id", userID)
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]*Notification, 0, len(rows))
	for _, row := range rows {
		items = append(items, FromDataModel(row))
	}
	return &InboxResponse{Notifications: items, Unread: unread}, nil
}

func (s *Service) MarkRead(ctx context.Context, userID, id int64) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("notifications marked read", "user_id", userID, "count", n)
	return n, nil
}

type InboxResponse struct {
	Notifications []*Notification `json:"notifications"`
	Unread        int64           `json:"unread"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
