package meeting

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/frahmantamala/meeting-manager/internal/notification"
	"github.com/frahmantamala/meeting-manager/internal/transport"
)

type ServiceAPI interface {
	CreateMeeting(ctx context.Context, actor int64, dto CreateMeetingDTO) (*CreateResult, error)
	UpdateMeeting(ctx context.Context, id int64, dto UpdateMeetingDTO) (*CreateResult, error)
	GetMeeting(ctx context.Context, id int64) (*Meeting, error)
	DeleteMeeting(ctx context.Context, id int64) error
	ListMeetings(ctx context.Context, f Filter) ([]*Meeting, int64, error)

	AddParticipant(ctx context.Context, actor, meetingID int64, dto ParticipantDTO) (*ParticipantResult, error)
	RemoveParticipant(ctx context.Context, meetingID, participantID int64) error
	SetAttendance(ctx context.Context, meetingID, participantID int64, attended bool) (*Participant, error)

	CreateMinutes(ctx context.Context, actor, meetingID int64, dto MinutesDTO) (*Minutes, error)
	GetMinutes(ctx context.Context, meetingID int64) (*Minutes, error)
	UpdateMinutes(ctx context.Context, meetingID int64, dto MinutesDTO) (*Minutes, error)

	UploadFile(ctx context.Context, actor, meetingID int64, up Upload) (*File, error)
	ListFiles(ctx context.Context, meetingID int64) ([]*File, error)
	OpenFile(ctx context.Context, meetingID, fileID int64) (*File, io.ReadCloser, error)
	DeleteFile(ctx context.Context, meetingID, fileID int64) error
}

// Dispatcher delivers planned notifications once a change is committed.
type Dispatcher interface {
	Dispatch(ctx context.Context, commands []notification.Command) error
}

type Handler struct {
	*transport.BaseHandler
	Service    ServiceAPI
	Dispatcher Dispatcher
	// multipart bodies above this size spill to temporary files
	UploadMemory int64
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, dispatcher Dispatcher) *Handler {
	return &Handler{
		BaseHandler:  baseHandler,
		Service:      service,
		Dispatcher:   dispatcher,
		UploadMemory: 8 << 20,
	}
}

// dispatch runs after the meeting change is stored. Failures are logged and
// never turn a successful request into an error.
func (h *Handler) dispatch(ctx context.Context, commands []notification.Command) {
	if h.Dispatcher == nil || len(commands) == 0 {
		return
	}
	if err := h.Dispatcher.Dispatch(ctx, commands); err != nil {
		h.Logger.Error("failed to dispatch notifications", "error", err, "count", len(commands))
	}
}

func (h *Handler) ListMeetings(w http.ResponseWriter, r *http.Request) {
	filter := ParseFilter(r.URL.Query())
	filter.Normalize()

	meetings, total, err := h.Service.ListMeetings(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp := MeetingsResponse{
		Meetings: make([]MeetingResponse, 0, len(meetings)),
		Total:    total,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}
	for _, m := range meetings {
		resp.Meetings = append(resp.Meetings, m.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Actor(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto CreateMeetingDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Service.CreateMeeting(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.dispatch(r.Context(), result.Notifications)
	h.WriteJSON(w, http.StatusCreated, result.Meeting.ToResponse())
}

func (h *Handler) GetMeeting(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	m, err := h.Service.GetMeeting(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, m.ToResponse())
}

func (h *Handler) UpdateMeeting(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto UpdateMeetingDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Service.UpdateMeeting(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.dispatch(r.Context(), result.Notifications)
	h.WriteJSON(w, http.StatusOK, result.Meeting.ToResponse())
}

func (h *Handler) DeleteMeeting(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.DeleteMeeting(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Actor(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	meetingID, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto ParticipantDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Service.AddParticipant(r.Context(), actor, meetingID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.dispatch(r.Context(), result.Notifications)
	h.WriteJSON(w, http.StatusCreated, result.Participant.ToResponse())
}

func (h *Handler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	meetingID, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	participantID, err := h.IDParam(r, "participantID")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.RemoveParticipant(r.Context(), meetingID, participantID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetAttendance(w http.ResponseWriter, r *http.Request) {
	meetingID, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	participantID, err := h.IDParam(r, "participantID")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto AttendanceDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	p, err := h.Service.SetAttendance(r.Context(), meetingID, participantID, dto.Attended)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p.ToResponse())
}

func (h *Handler) GetMinutes(w http.ResponseWriter, r *http.Request) {
	meetingID, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	minutes, err := h.Service.GetMinutes(r.Context(), meetingID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, minutes)
}

func (h *Handler) CreateMinutes(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Actor(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	meetingID, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto MinutesDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	minutes, err := h.Service.CreateMinutes(r.Context(), actor, meetingID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, minutes)
}

func (h *Handler) UpdateMinutes(w http.ResponseWriter, r *http.Request) {
	meetingID, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto MinutesDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	minutes, err := h.Service.UpdateMinutes(r.Context(), meetingID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, minutes)
}

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	meetingID, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	files, err := h.Service.ListFiles(r.Context(), meetingID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, FilesResponse{Files: files})
}

// UploadFile takes a multipart form with the attachment in the "file" field.
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Actor(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	meetingID, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := r.ParseMultipartForm(h.UploadMemory); err != nil {
		h.HandleServiceError(w, ErrFileRequired.WithCause(err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.HandleServiceError(w, ErrFileRequired.WithCause(err))
		return
	}
	defer file.Close()

	uploaded, err := h.Service.UploadFile(r.Context(), actor, meetingID, Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, uploaded)
}

func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	meetingID, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	fileID, err := h.IDParam(r, "fileID")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	f, body, err := h.Service.OpenFile(r.Context(), meetingID, fileID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.FileName}))
	if f.SizeBytes > 0 {
		w.Header().Set("Content-Length", fmt.Sprint(f.SizeBytes))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.Logger.Warn("file download interrupted", "error", err, "file_id", fileID)
	}
}

func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	meetingID, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	fileID, err := h.IDParam(r, "fileID")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.DeleteFile(r.Context(), meetingID, fileID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StatusOptions lists the meeting statuses with their display labels.
func (h *Handler) StatusOptions(w http.ResponseWriter, r *http.Request) {
	type option struct {
		Value string `json:"value"`
		Label string `json:"label"`
	}
	options := make([]option, 0, len(Statuses()))
	for _, s := range Statuses() {
		options = append(options, option{Value: string(s), Label: s.Label()})
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"statuses": options})
}
