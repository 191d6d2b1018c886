package meeting

import (
	"context"

	meetingDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/meeting"
)

func minutesFromDataModel(row *meetingDatamodel.MeetingMinutes) *Minutes {
	return &Minutes{
		ID:          row.ID,
		MeetingID:   row.MeetingID,
		Content:     row.Content,
		CreatedByID: row.CreatedByID,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

// CreateMinutes records the minutes of a meeting. A meeting has at most one.
func (s *Service) CreateMinutes(ctx context.Context, actor, meetingID int64, dto MinutesDTO) (*Minutes, error) {
	if err := s.requireActor(ctx, actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.requireMeeting(ctx, meetingID); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetMinutes(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrMinutesExist
	}

	row := &meetingDatamodel.MeetingMinutes{
		MeetingID:   meetingID,
		Content:     dto.Content,
		CreatedByID: actor,
	}
	if err := s.repo.CreateMinutes(ctx, row); err != nil {
		return nil, err
	}

	s.logger.Info("minutes created", "meeting_id", meetingID, "minutes_id", row.ID)
	return minutesFromDataModel(row), nil
}

func (s *Service) GetMinutes(ctx context.Context, meetingID int64) (*Minutes, error) {
	if _, err := s.requireMeeting(ctx, meetingID); err != nil {
		return nil, err
	}
	row, err := s.repo.GetMinutes(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrMinutesNotFound
	}
	return minutesFromDataModel(row), nil
}

func (s *Service) UpdateMinutes(ctx context.Context, meetingID int64, dto MinutesDTO) (*Minutes, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	row, err := s.repo.GetMinutes(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrMinutesNotFound
	}

	row.Content = dto.Content
	if err := s.repo.UpdateMinutes(ctx, row); err != nil {
		return nil, err
	}
	return minutesFromDataModel(row), nil
}
