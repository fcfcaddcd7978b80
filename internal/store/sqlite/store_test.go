// internal/store/sqlite/store_test.go
package sqlite

import (
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/roster/internal/models"
	"github.com/shrimpsizemoose/roster/internal/store"
)

// setupTestDB creates an in-memory SQLite database with the real migrations
func setupTestDB(t *testing.T) (*SQLiteStore, func()) {
	s, err := NewSQLiteStore(":memory:", "../../../migrations")
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		err := s.Close()
		require.NoError(t, err, "Failed to close database")
	}

	return s, cleanup
}

func student(id, name string) models.Student {
	return models.Student{
		ID:         id,
		Name:       name,
		DOB:        models.NewDate(2002, time.September, 1),
		Gender:     "Nam",
		Faculty:    "CNTT",
		SchoolYear: "2020",
		Email:      id + "@hcmus.edu.vn",
		Phone:      "0912345678",
		Status:     "Đang học",
	}
}

func TestMain(m *testing.M) {
	log.Println("Starting SQLite store tests...")
	code := m.Run()
	log.Println("Finished SQLite store tests")
	os.Exit(code)
}

func TestCreateAndGetStudent(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	want := student("sv001", "Nguyễn Văn A")
	want.Program = "Chất lượng cao"

	t.Run("create student", func(t *testing.T) {
		require.NoError(t, s.CreateStudent(&want))
	})

	t.Run("get student", func(t *testing.T) {
		got, err := s.GetStudent("sv001")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, "2002-09-01", got.DOB.String())
		assert.Equal(t, want.SchoolYear, got.SchoolYear)
		assert.Equal(t, want.Program, got.Program)
		assert.Equal(t, want.Email, got.Email)
	})

	t.Run("duplicate id is rejected", func(t *testing.T) {
		err := s.CreateStudent(&want)
		assert.True(t, errors.Is(err, store.ErrAlreadyExists))
	})

	t.Run("get non-existent student", func(t *testing.T) {
		got, err := s.GetStudent("nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestUpdateAndDeleteStudent(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	st := student("sv001", "Nguyễn Văn A")
	require.NoError(t, s.CreateStudent(&st))

	t.Run("update keeps identifier", func(t *testing.T) {
		changed := st
		changed.ID = "ignored"
		changed.Status = "Bảo lưu"
		require.NoError(t, s.UpdateStudent("sv001", &changed))

		got, err := s.GetStudent("sv001")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Bảo lưu", got.Status)

		missing, err := s.GetStudent("ignored")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("update unknown student", func(t *testing.T) {
		err := s.UpdateStudent("nope", &st)
		assert.True(t, errors.Is(err, store.ErrNotFound))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.DeleteStudent("sv001"))
		assert.True(t, errors.Is(s.DeleteStudent("sv001"), store.ErrNotFound))

		all, err := s.ListStudents()
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func TestListAndSearchStudents(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	for _, st := range []models.Student{
		student("sv003", "Trần Thị B"),
		student("sv001", "Nguyen Van A"),
		student("sv002", "Le Van C"),
	} {
		require.NoError(t, s.CreateStudent(&st))
	}

	t.Run("list is ordered by id", func(t *testing.T) {
		all, err := s.ListStudents()
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "sv001", all[0].ID)
		assert.Equal(t, "sv003", all[2].ID)
	})

	t.Run("search by name ignores case", func(t *testing.T) {
		got, err := s.SearchStudents("NGUYEN")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "sv001", got[0].ID)
	})

	t.Run("search by shared substring", func(t *testing.T) {
		got, err := s.SearchStudents("van")
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("search without match is empty, not nil", func(t *testing.T) {
		got, err := s.SearchStudents("zzz")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestSnapshots(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	got, err := s.LoadSnapshot("roster:snapshot")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.SaveSnapshot("roster:snapshot", []byte(`[1]`)))
	require.NoError(t, s.SaveSnapshot("roster:snapshot", []byte(`[2]`)))

	got, err = s.LoadSnapshot("roster:snapshot")
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(got))
}

func TestTranslateToSQLite(t *testing.T) {
	assert.Equal(t,
		"saved_at INTEGER NOT NULL",
		translateToSQLite("saved_at BIGINT NOT NULL"))
	assert.Equal(t,
		"id TEXT PRIMARY KEY",
		translateToSQLite("id TEXT PRIMARY KEY"))
}
