package meeting

import "github.com/frahmantamala/meeting-manager/internal"

var (
	ErrMeetingNotFound     = internal.NewNotFoundError("meeting not found", internal.ErrCodeMeetingNotFound)
	ErrParticipantNotFound = internal.NewNotFoundError("participant not found", internal.ErrCodeParticipantNotFound)
	ErrMinutesNotFound     = internal.NewNotFoundError("minutes not found", internal.ErrCodeMinutesNotFound)
	ErrFileNotFound        = internal.NewNotFoundError("file not found", internal.ErrCodeFileNotFound)

	ErrMinutesExist         = internal.NewConflictError("Cuộc họp đã có biên bản.", internal.ErrCodeMinutesExist)
	ErrDuplicateParticipant = internal.NewConflictError("Thành phần tham dự đã có trong cuộc họp.", internal.ErrCodeConstraintViolation)
	// ErrReferenceGone reports a row deleted between validation and insert.
	ErrReferenceGone = internal.NewConflictError("Dữ liệu tham chiếu không còn tồn tại.", internal.ErrCodeConstraintViolation)
	// ErrMeetingNumberTaken reports that every allocation attempt collided
	// with an existing meeting number.
	ErrMeetingNumberTaken = internal.NewConflictError("could not allocate a unique meeting number", internal.ErrCodeMeetingNumberTaken)

	ErrFileTooLarge    = internal.NewValidationFieldError("file", "Tệp vượt quá dung lượng cho phép.", internal.ErrCodeFileTooLarge)
	ErrFileRequired    = internal.NewValidationFieldError("file", "Vui lòng chọn tệp.", internal.ErrCodeRequired)
	ErrStorageDisabled = internal.NewValidationError("file storage is not configured", internal.ErrCodeValidationFailed)
)
