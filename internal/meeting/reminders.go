package meeting

import (
	"context"
	"time"

	"github.com/frahmantamala/meeting-manager/internal/notification"
)

// StartsAt is the meeting start in UTC. Meetings without a time start at
// midnight of their date.
func (m *Meeting) StartsAt() time.Time {
	start := normalizeDate(m.Date)
	if m.Time == nil {
		return start
	}
	t, err := time.Parse(timeLayout, *m.Time)
	if err != nil {
		return start
	}
	return start.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
}

// UpcomingReminders lists scheduled meetings starting within [from, to)
// together with their participant targets.
func (s *Service) UpcomingReminders(ctx context.Context, from, to time.Time) ([]notification.Reminder, error) {
	from, to = from.UTC(), to.UTC()
	if !to.After(from) {
		return nil, nil
	}

	rows, err := s.repo.Scheduled(ctx, normalizeDate(from), normalizeDate(to))
	if err != nil {
		return nil, err
	}

	var upcoming []*Meeting
	var ids []int64
	for _, row := range rows {
		m := FromDataModel(row)
		start := m.StartsAt()
		if start.Before(from) || !start.Before(to) {
			continue
		}
		upcoming = append(upcoming, m)
		ids = append(ids, m.ID)
	}
	if len(upcoming) == 0 {
		return nil, nil
	}

	prows, err := s.repo.Participants(ctx, ids...)
	if err != nil {
		return nil, err
	}
	byMeeting := make(map[int64][]Participant, len(upcoming))
	for _, r := range prows {
		byMeeting[r.MeetingID] = append(byMeeting[r.MeetingID], participantFromDataModel(r))
	}

	reminders := make([]notification.Reminder, 0, len(upcoming))
	for _, m := range upcoming {
		reminders = append(reminders, notification.Reminder{
			Meeting: meetingInfo(m),
			Targets: targetsOf(byMeeting[m.ID]),
		})
	}
	return reminders, nil
}
