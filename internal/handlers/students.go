package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/roster/internal/metrics"
	"github.com/shrimpsizemoose/roster/internal/models"
	"github.com/shrimpsizemoose/roster/internal/store"
)

type StudentHandler struct {
	store store.StudentStore
}

func NewStudentHandler(s store.StudentStore) *StudentHandler {
	return &StudentHandler{
		store: s,
	}
}

func (h *StudentHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.observe(h.HandleList))
	mux.HandleFunc("GET /api/students/{id}", h.observe(h.HandleGet))
	mux.HandleFunc("POST /api/students", h.observe(h.HandleCreate))
	mux.HandleFunc("PUT /api/students/{id}", h.observe(h.HandleUpdate))
	mux.HandleFunc("DELETE /api/students/{id}", h.observe(h.HandleDelete))
	mux.HandleFunc("GET /api/search", h.observe(h.HandleSearch))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *StudentHandler) observe(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			metrics.APIRequestDuration.WithLabelValues(
				r.Pattern,
				r.Method,
				strconv.Itoa(rec.status),
			).Observe(time.Since(start).Seconds())
		}()
		next(rec, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (h *StudentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	students, err := h.store.ListStudents()
	if err != nil {
		logger.Error.Printf("Failed to list students: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch students")
		return
	}
	writeJSON(w, http.StatusOK, students)
}

func (h *StudentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	student, err := h.store.GetStudent(id)
	if err != nil {
		logger.Error.Printf("Failed to get student %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch student")
		return
	}
	if student == nil {
		writeError(w, http.StatusNotFound, "Student not found")
		return
	}
	writeJSON(w, http.StatusOK, student)
}

func (h *StudentHandler) decodeStudent(w http.ResponseWriter, r *http.Request) (*models.Student, bool) {
	var student models.Student
	if err := json.NewDecoder(r.Body).Decode(&student); err != nil {
		logger.Debug.Printf("Invalid request body: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	return &student, true
}

func validationStatus(err error) (int, string) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return http.StatusUnprocessableEntity, verr.Message
	}
	return http.StatusBadRequest, err.Error()
}

func (h *StudentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	student, ok := h.decodeStudent(w, r)
	if !ok {
		return
	}

	if err := student.ValidateForWrite(); err != nil {
		status, message := validationStatus(err)
		writeError(w, status, message)
		return
	}

	if err := h.store.CreateStudent(student); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, "Student already exists")
			return
		}
		logger.Error.Printf("Failed to create student %s: %v", student.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to save student")
		return
	}

	logger.Info.Printf("Created student %s", student.ID)
	writeJSON(w, http.StatusCreated, student)
}

func (h *StudentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	student, ok := h.decodeStudent(w, r)
	if !ok {
		return
	}
	student.ID = id

	if err := student.Validate(); err != nil {
		status, message := validationStatus(err)
		writeError(w, status, message)
		return
	}

	if err := h.store.UpdateStudent(id, student); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Student not found")
			return
		}
		logger.Error.Printf("Failed to update student %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to update student")
		return
	}

	logger.Info.Printf("Updated student %s", id)
	writeJSON(w, http.StatusOK, student)
}

func (h *StudentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.store.DeleteStudent(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Student not found")
			return
		}
		logger.Error.Printf("Failed to delete student %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to delete student")
		return
	}

	logger.Info.Printf("Deleted student %s", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *StudentHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	students, err := h.store.SearchStudents(q)
	if err != nil {
		logger.Error.Printf("Failed to search students for %q: %v", q, err)
		writeError(w, http.StatusInternalServerError, "Failed to search students")
		return
	}
	writeJSON(w, http.StatusOK, students)
}
