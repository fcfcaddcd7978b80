package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/roster/internal/gateway"
	"github.com/shrimpsizemoose/roster/internal/models"
	"github.com/shrimpsizemoose/roster/internal/notify"
	"github.com/shrimpsizemoose/roster/internal/roster"
	"github.com/shrimpsizemoose/roster/internal/store/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	s, err := sqlite.NewSQLiteStore(":memory:", "../../migrations")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	mux := http.NewServeMux()
	NewStudentHandler(s).Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func student(id string) models.Student {
	return models.Student{
		ID:         id,
		Name:       "Nguyễn Văn A",
		DOB:        models.NewDate(2002, time.September, 1),
		Gender:     "Nam",
		Faculty:    "CNTT",
		SchoolYear: "2020",
		Email:      "a@b.com",
		Phone:      "0912345678",
		Status:     "Đang học",
	}
}

func do(t *testing.T, method, url string, body interface{}) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestStudentHandler_StatusCodes(t *testing.T) {
	srv := newTestServer(t)

	t.Run("list starts empty", func(t *testing.T) {
		resp := do(t, http.MethodGet, srv.URL+"/", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var got []models.Student
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("create", func(t *testing.T) {
		resp := do(t, http.MethodPost, srv.URL+"/api/students", student("sv001"))
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("duplicate create conflicts", func(t *testing.T) {
		resp := do(t, http.MethodPost, srv.URL+"/api/students", student("sv001"))
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("invalid phone is unprocessable", func(t *testing.T) {
		s := student("sv002")
		s.Phone = "123456"
		resp := do(t, http.MethodPost, srv.URL+"/api/students", s)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("garbage body", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/students", bytes.NewBufferString("{"))
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown student", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, do(t, http.MethodGet, srv.URL+"/api/students/nope", nil).StatusCode)
		assert.Equal(t, http.StatusNotFound, do(t, http.MethodPut, srv.URL+"/api/students/nope", student("nope")).StatusCode)
		assert.Equal(t, http.StatusNotFound, do(t, http.MethodDelete, srv.URL+"/api/students/nope", nil).StatusCode)
	})

	t.Run("delete returns no content", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, do(t, http.MethodDelete, srv.URL+"/api/students/sv001", nil).StatusCode)
	})
}

type recorder struct {
	notes []string
}

func (r *recorder) Notify(_ notify.Severity, message string) {
	r.notes = append(r.notes, message)
}

type yes struct{}

func (yes) Confirm(string) bool {
	return true
}

func ids(view roster.ViewState) []string {
	out := []string{}
	for _, s := range view.Students {
		out = append(out, s.ID)
	}
	return out
}

func TestRosterAgainstServer(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	gw, err := gateway.NewClient(srv.URL, 5*time.Second)
	require.NoError(t, err)

	rec := &recorder{}
	ctrl := roster.NewController(gw, roster.Options{Notifier: rec, Confirmer: yes{}})

	t.Run("create then list includes the new id", func(t *testing.T) {
		require.NoError(t, ctrl.OpenCreate())
		require.NoError(t, ctrl.SetForm(student("sv100")))
		require.NoError(t, ctrl.Save(ctx))

		assert.Equal(t, []string{"sv100"}, ids(ctrl.View()))
		assert.Equal(t, roster.ModalClosed, ctrl.Modal().Mode)
	})

	t.Run("edit keeps identifier and updates fields", func(t *testing.T) {
		require.NoError(t, ctrl.OpenEdit(ctx, "sv100"))
		form := ctrl.Form()
		assert.Equal(t, "2002-09-01", form.DOB.String())

		form.ID = "hijack"
		form.Faculty = "Toán"
		require.NoError(t, ctrl.SetForm(form))
		require.NoError(t, ctrl.Save(ctx))

		view := ctrl.View()
		require.Len(t, view.Students, 1)
		assert.Equal(t, "sv100", view.Students[0].ID)
		assert.Equal(t, "Toán", view.Students[0].Faculty)
	})

	t.Run("search without match", func(t *testing.T) {
		require.NoError(t, ctrl.Search(ctx, "nguyen"))

		view := ctrl.View()
		assert.Equal(t, roster.ViewSearch, view.Kind)
		assert.True(t, view.Empty())
		assert.Equal(t, roster.MsgNoResults, rec.notes[len(rec.notes)-1])
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, ctrl.Delete(ctx, "sv100"))
		assert.Empty(t, ids(ctrl.View()))
		assert.Equal(t, roster.MsgDeleted, rec.notes[len(rec.notes)-1])
	})
}
