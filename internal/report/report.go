// Package report builds read-only views over meetings: attendance summaries
// straight from SQL and spreadsheet exports of the meeting list.
package report

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/frahmantamala/meeting-manager/internal/meeting"
	"github.com/jmoiron/sqlx"
)

// MeetingLister is the part of the meeting service the export needs.
type MeetingLister interface {
	ListMeetings(ctx context.Context, f meeting.Filter) ([]*meeting.Meeting, int64, error)
}

type AttendanceSummary struct {
	MeetingID     int64            `json:"meeting_id" db:"-"`
	MeetingNumber string           `json:"meeting_number" db:"-"`
	Participants  int64            `json:"participants" db:"participants"`
	Required      int64            `json:"required" db:"required"`
	Attended      int64            `json:"attended" db:"attended"`
	ByType        map[string]int64 `json:"by_type" db:"-"`
}

// Rate is the attended share of participants, 0 when there are none.
func (s *AttendanceSummary) Rate() float64 {
	if s.Participants == 0 {
		return 0
	}
	return float64(s.Attended) / float64(s.Participants)
}

const attendanceQuery = `
SELECT COUNT(*) AS participants,
       COALESCE(SUM(CASE WHEN is_required THEN 1 ELSE 0 END), 0) AS required,
       COALESCE(SUM(CASE WHEN attended THEN 1 ELSE 0 END), 0) AS attended
FROM meeting_participants
WHERE meeting_id = ?`

const attendanceByTypeQuery = `
SELECT participant_type, COUNT(*) AS total
FROM meeting_participants
WHERE meeting_id = ?
GROUP BY participant_type`

type Service struct {
	db       *sqlx.DB
	meetings MeetingLister
	logger   *slog.Logger
}

func NewService(db *sqlx.DB, meetings MeetingLister, logger *slog.Logger) *Service {
	return &Service{db: db, meetings: meetings, logger: logger}
}

func (s *Service) AttendanceSummary(ctx context.Context, meetingID int64) (*AttendanceSummary, error) {
	var number string
	err := s.db.GetContext(ctx, &number, s.db.Rebind(`SELECT meeting_number FROM meetings WHERE id = ?`), meetingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, meeting.ErrMeetingNotFound
	}
	if err != nil {
		return nil, err
	}

	summary := &AttendanceSummary{MeetingID: meetingID, MeetingNumber: number, ByType: map[string]int64{}}
	if err := s.db.GetContext(ctx, summary, s.db.Rebind(attendanceQuery), meetingID); err != nil {
		s.logger.Error("failed to summarise attendance", "error", err, "meeting_id", meetingID)
		return nil, err
	}

	var rows []struct {
		Type  string `db:"participant_type"`
		Total int64  `db:"total"`
	}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(attendanceByTypeQuery), meetingID); err != nil {
		return nil, err
	}
	for _, r := range rows {
		summary.ByType[r.Type] = r.Total
	}
	return summary, nil
}
