package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/roster/internal/models"
)

type StudentStore interface {
	Close() error
	ApplyMigrations(dir string) error

	ListStudents() ([]models.Student, error)
	GetStudent(id string) (*models.Student, error)
	CreateStudent(student *models.Student) error
	UpdateStudent(id string, student *models.Student) error
	DeleteStudent(id string) error
	SearchStudents(query string) ([]models.Student, error)

	SaveSnapshot(key string, payload []byte) error
	LoadSnapshot(key string) ([]byte, error)
}

const studentColumns = "id, name, dob, gender, faculty, school_year, program, address, email, phone, status"

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory in file name
// order, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	names := make([]string, 0, len(files))
	for _, file := range files {
		if strings.HasSuffix(file.Name(), ".sql") {
			names = append(names, file.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		logger.Debug.Printf("Applying migration: %s", name)
		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *BaseStore) ListStudents() ([]models.Student, error) {
	students := []models.Student{}
	err := s.DB.Select(&students, `SELECT `+studentColumns+` FROM students ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

func (s *BaseStore) GetStudent(id string) (*models.Student, error) {
	var student models.Student
	query := s.Converter(`SELECT ` + studentColumns + ` FROM students WHERE id = ?`)

	err := s.DB.Get(&student, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student %s: %w", id, err)
	}
	return &student, nil
}

func (s *BaseStore) CreateStudent(student *models.Student) error {
	existing, err := s.GetStudent(student.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, student.ID)
	}

	_, err = s.DB.NamedExec(`
		INSERT INTO students (`+studentColumns+`)
		VALUES (:id, :name, :dob, :gender, :faculty, :school_year, :program, :address, :email, :phone, :status)
	`, student)
	if err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

// UpdateStudent overwrites every field but the identifier.
func (s *BaseStore) UpdateStudent(id string, student *models.Student) error {
	row := *student
	row.ID = id

	res, err := s.DB.NamedExec(`
		UPDATE students SET
			name = :name,
			dob = :dob,
			gender = :gender,
			faculty = :faculty,
			school_year = :school_year,
			program = :program,
			address = :address,
			email = :email,
			phone = :phone,
			status = :status
		WHERE id = :id
	`, &row)
	if err != nil {
		return fmt.Errorf("failed to update student %s: %w", id, err)
	}
	return expectOneRow(res, id)
}

func (s *BaseStore) DeleteStudent(id string) error {
	res, err := s.DB.Exec(s.Converter(`DELETE FROM students WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete student %s: %w", id, err)
	}
	return expectOneRow(res, id)
}

// SearchStudents does a case-insensitive substring match over the
// identifying columns.
func (s *BaseStore) SearchStudents(q string) ([]models.Student, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	query := s.Converter(`
		SELECT ` + studentColumns + `
		FROM students
		WHERE LOWER(id) LIKE ?
		OR LOWER(name) LIKE ?
		OR LOWER(faculty) LIKE ?
		OR LOWER(email) LIKE ?
		OR LOWER(phone) LIKE ?
		ORDER BY id
	`)

	students := []models.Student{}
	if err := s.DB.Select(&students, query, pattern, pattern, pattern, pattern, pattern); err != nil {
		return nil, fmt.Errorf("failed to search students: %w", err)
	}
	return students, nil
}

func (s *BaseStore) SaveSnapshot(key string, payload []byte) error {
	_, err := s.DB.Exec(s.Converter(`
		INSERT INTO snapshots (key, payload, saved_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
		payload = excluded.payload,
		saved_at = excluded.saved_at
	`), key, string(payload), time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", key, err)
	}
	return nil
}

// LoadSnapshot returns nil when nothing was saved under key.
func (s *BaseStore) LoadSnapshot(key string) ([]byte, error) {
	var payload string
	err := s.DB.Get(&payload, s.Converter(`SELECT payload FROM snapshots WHERE key = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", key, err)
	}
	return []byte(payload), nil
}

func expectOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
