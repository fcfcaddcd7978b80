package postgres

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/shrimpsizemoose/roster/internal/models"
	"github.com/shrimpsizemoose/roster/internal/store"
)

type PostgresStore struct {
	store.BaseStore
}

func NewPostgresStore(dsn, migrationsDir string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &PostgresStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			out := query
			for i := 1; strings.Contains(out, "?"); i++ {
				out = strings.Replace(out, "?", fmt.Sprintf("$%d", i), 1)
			}
			return out
		},
	}}

	if migrationsDir != "" {
		if err := s.ApplyMigrations(migrationsDir); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	return s, nil
}

func (s *PostgresStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, nil)
}

// SearchStudents matches case-insensitively with ILIKE.
func (s *PostgresStore) SearchStudents(q string) ([]models.Student, error) {
	pattern := "%" + strings.TrimSpace(q) + "%"
	query := `
		SELECT id, name, dob, gender, faculty, school_year, program, address, email, phone, status
		FROM students
		WHERE id ILIKE $1
		OR name ILIKE $1
		OR faculty ILIKE $1
		OR email ILIKE $1
		OR phone ILIKE $1
		ORDER BY id
	`

	students := []models.Student{}
	if err := s.DB.Select(&students, query, pattern); err != nil {
		return nil, fmt.Errorf("failed to search students: %w", err)
	}
	return students, nil
}
