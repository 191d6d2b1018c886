package notification

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/meeting-manager/internal/transport"
)

type ServiceAPI interface {
	Inbox(ctx context.Context, userID int64, q InboxQuery) (*InboxResponse, error)
	MarkRead(ctx context.Context, userID, id int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: service}
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Actor(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	q := InboxQuery{UnreadOnly: r.URL.Query().Get("unread") == "true"}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		q.Limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
		q.Offset = v
	}

	inbox, err := h.Service.Inbox(r.Context(), actor, q)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, inbox)
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Actor(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.MarkRead(r.Context(), actor, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Actor(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	n, err := h.Service.MarkAllRead(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MarkAllReadResponse{Updated: n})
}
