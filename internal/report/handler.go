package report

import (
	"bytes"
	"context"
	"mime"
	"net/http"
	"strconv"

	"github.com/frahmantamala/meeting-manager/internal/meeting"
	"github.com/frahmantamala/meeting-manager/internal/transport"
)

type ServiceAPI interface {
	AttendanceSummary(ctx context.Context, meetingID int64) (*AttendanceSummary, error)
	ExportMeetings(ctx context.Context, f meeting.Filter) (*bytes.Buffer, string, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: service}
}

func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	summary, err := h.Service.AttendanceSummary(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, summary)
}

// ExportMeetings accepts the same query parameters as the meeting list.
func (h *Handler) ExportMeetings(w http.ResponseWriter, r *http.Request) {
	buf, name, err := h.Service.ExportMeetings(r.Context(), meeting.ParseFilter(r.URL.Query()))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", XLSXContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.Logger.Warn("export download interrupted", "error", err)
	}
}
