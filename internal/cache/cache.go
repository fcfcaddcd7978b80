package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shrimpsizemoose/roster/internal/models"
	"github.com/shrimpsizemoose/roster/internal/store"
)

const DefaultKey = "roster:snapshot"

// SnapshotCache keeps the last full student list so it can be shown before
// the first request completes. It is a convenience, not an offline store.
type SnapshotCache interface {
	Save(ctx context.Context, students []models.Student) error
	Load(ctx context.Context) ([]models.Student, error)
	Close() error
}

func encode(students []models.Student) ([]byte, error) {
	if students == nil {
		students = []models.Student{}
	}
	data, err := json.Marshal(students)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

func decode(data []byte) ([]models.Student, error) {
	if data == nil {
		return nil, nil
	}
	var students []models.Student
	if err := json.Unmarshal(data, &students); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return students, nil
}

// SQLCache stores the snapshot in the snapshots table of a StudentStore.
type SQLCache struct {
	store store.StudentStore
	key   string
}

func NewSQLCache(s store.StudentStore, key string) *SQLCache {
	if key == "" {
		key = DefaultKey
	}
	return &SQLCache{store: s, key: key}
}

func (c *SQLCache) Save(_ context.Context, students []models.Student) error {
	data, err := encode(students)
	if err != nil {
		return err
	}
	return c.store.SaveSnapshot(c.key, data)
}

func (c *SQLCache) Load(_ context.Context) ([]models.Student, error) {
	data, err := c.store.LoadSnapshot(c.key)
	if err != nil {
		return nil, err
	}
	return decode(data)
}

func (c *SQLCache) Close() error {
	return c.store.Close()
}
