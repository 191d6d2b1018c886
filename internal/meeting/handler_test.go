package meeting_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/meeting-manager/internal"
	"github.com/frahmantamala/meeting-manager/internal/meeting"
	"github.com/frahmantamala/meeting-manager/internal/notification"
	"github.com/frahmantamala/meeting-manager/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingDispatcher struct {
	batches [][]notification.Command
	err     error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, commands []notification.Command) error {
	d.batches = append(d.batches, commands)
	return d.err
}

// withActor stands in for the user context middleware.
func withActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := internal.ParseUserID(r.Header.Get("X-User-ID")); ok {
			r = r.WithContext(internal.ContextWithUserID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

var _ = Describe("Meeting Handler", func() {
	var (
		router     chi.Router
		repo       *MockRepository
		dispatcher *recordingDispatcher
	)

	const body = `{
		"title": "Giao ban tuần",
		"date": "2026-06-15",
		"time": "08:30",
		"host_id": 1,
		"participants": [{"participant_type": "individual", "user_id": 2}]
	}`

	do := func(method, target, payload string, actor string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		if actor != "" {
			req.Header.Set("X-User-ID", actor)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = NewMockRepository()
		dispatcher = &recordingDispatcher{}
		service := meeting.NewService(repo, &MockPlanner{}, slogger)
		handler := meeting.NewHandler(&transport.BaseHandler{Logger: slogger}, service, dispatcher)

		router = chi.NewRouter()
		router.Use(withActor)
		router.Get("/meetings", handler.ListMeetings)
		router.Post("/meetings", handler.CreateMeeting)
		router.Get("/meetings/{id}", handler.GetMeeting)
		router.Post("/meetings/{id}/minutes", handler.CreateMinutes)
		router.Get("/meetings/statuses", handler.StatusOptions)
	})

	It("creates a meeting and dispatches its notifications", func() {
		w := do(http.MethodPost, "/meetings", body, "1")
		Expect(w.Code).To(Equal(http.StatusCreated))

		var resp meeting.MeetingResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.MeetingNumber).To(MatchRegexp(`^HOP-\d{4}-0001$`))
		Expect(resp.StatusLabel).To(Equal("Đã lên lịch"))
		Expect(resp.Participants).To(HaveLen(1))
		Expect(resp.Participants[0].TypeLabel).To(Equal("Cá nhân"))

		Expect(dispatcher.batches).To(HaveLen(1))
		Expect(dispatcher.batches[0][0].Type).To(Equal(notification.TypeMeetingCreated))
	})

	It("keeps the created meeting when dispatch fails", func() {
		dispatcher.err = errors.New("inbox down")
		w := do(http.MethodPost, "/meetings", body, "1")
		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(repo.meetings).To(HaveLen(1))
	})

	It("requires the actor header", func() {
		w := do(http.MethodPost, "/meetings", body, "")
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(repo.meetings).To(BeEmpty())
	})

	It("returns 401 when the actor header names no user", func() {
		w := do(http.MethodPost, "/meetings", body, "999")
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(w.Body.String()).To(ContainSubstring("UNKNOWN_ACTOR"))
		Expect(repo.meetings).To(BeEmpty())
	})

	It("returns field errors in the error envelope", func() {
		w := do(http.MethodPost, "/meetings", `{"title": "", "date": "2026-06-15", "host_id": 1}`, "1")
		Expect(w.Code).To(Equal(http.StatusBadRequest))

		var resp struct {
			Error struct {
				Type    string `json:"type"`
				Details struct {
					Errors []struct {
						Field   string `json:"field"`
						Message string `json:"message"`
					} `json:"errors"`
				} `json:"details"`
			} `json:"error"`
		}
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Error.Type).To(Equal("VALIDATION_ERROR"))
		Expect(resp.Error.Details.Errors).To(HaveLen(1))
		Expect(resp.Error.Details.Errors[0].Field).To(Equal("title"))
		Expect(dispatcher.batches).To(BeEmpty())
	})

	It("rejects unknown body fields", func() {
		w := do(http.MethodPost, "/meetings", `{"meeting_number": "HOP-2026-9999"}`, "1")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("lists meetings with paging metadata", func() {
		Expect(do(http.MethodPost, "/meetings", body, "1").Code).To(Equal(http.StatusCreated))

		w := do(http.MethodGet, "/meetings?limit=500&date_from=not-a-date", "", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp meeting.MeetingsResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Total).To(Equal(int64(1)))
		Expect(resp.Limit).To(Equal(meeting.MaxPageSize))
		Expect(resp.Meetings[0].HostName).To(Equal("Nguyễn An"))

		var raw map[string]json.RawMessage
		Expect(json.Unmarshal(w.Body.Bytes(), &raw)).To(Succeed())
		Expect(raw).To(HaveKey("meetings"))
		Expect(raw).To(HaveKey("total"))
	})

	It("returns 404 for an unknown meeting", func() {
		w := do(http.MethodGet, "/meetings/42", "", "")
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("returns 409 for a second set of minutes", func() {
		Expect(do(http.MethodPost, "/meetings", body, "1").Code).To(Equal(http.StatusCreated))

		Expect(do(http.MethodPost, "/meetings/1/minutes", `{"content": "v1"}`, "2").Code).To(Equal(http.StatusCreated))
		w := do(http.MethodPost, "/meetings/1/minutes", `{"content": "v2"}`, "2")
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(w.Body.String()).To(ContainSubstring("MINUTES_EXIST"))
	})
})
