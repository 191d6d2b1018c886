package department_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/meeting-manager/internal"
	"github.com/frahmantamala/meeting-manager/internal/database"
	"github.com/frahmantamala/meeting-manager/internal/department"
	departmentPostgres "github.com/frahmantamala/meeting-manager/internal/department/postgres"
	"github.com/frahmantamala/meeting-manager/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Department Handler Integration", func() {
	var (
		handles *database.Handles
		router  chi.Router
	)

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		handles, err = database.OpenSQLite("")
		Expect(err).NotTo(HaveOccurred())

		repo := departmentPostgres.NewDepartmentRepository(handles.Gorm)
		service := department.NewService(repo, slogger)
		handler := department.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		_, err = service.Create(context.Background(), department.DepartmentDTO{Name: "Khoa Nội"})
		Expect(err).NotTo(HaveOccurred())

		router = chi.NewRouter()
		router.Get("/departments", handler.ListDepartments)
		router.Post("/departments", handler.CreateDepartment)
		router.Get("/departments/{id}", handler.GetDepartment)
		router.Delete("/departments/{id}", handler.DeleteDepartment)
	})

	AfterEach(func() {
		Expect(handles.Close()).To(Succeed())
	})

	It("should list departments", func() {
		req := httptest.NewRequest(http.MethodGet, "/departments", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var response department.DepartmentsResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.Departments).To(HaveLen(1))
		Expect(response.Departments[0].Name).To(Equal("Khoa Nội"))
	})

	It("should create a department", func() {
		req := httptest.NewRequest(http.MethodPost, "/departments", strings.NewReader(`{"name":"Khoa Ngoại"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusCreated))
		var created department.Department
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.Name).To(Equal("Khoa Ngoại"))
	})

	It("should answer 409 for a duplicate name", func() {
		req := httptest.NewRequest(http.MethodPost, "/departments", strings.NewReader(`{"name":"Khoa Nội"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusConflict))
		var response internal.Response
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.Error.Code).To(Equal(internal.ErrCodeDuplicateName))
	})

	It("should answer 400 with field errors for an empty name", func() {
		req := httptest.NewRequest(http.MethodPost, "/departments", strings.NewReader(`{"name":""}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring(`"field":"name"`))
	})

	It("should answer 404 for an unknown id", func() {
		req := httptest.NewRequest(http.MethodGet, "/departments/999", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("should answer 400 for a malformed id", func() {
		req := httptest.NewRequest(http.MethodDelete, "/departments/abc", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
