package store

import "errors"

type DatabaseType string

const (
	DBTypePostgres DatabaseType = "postgres"
	DBTypeSQLite   DatabaseType = "sqlite"
)

var (
	ErrNotFound      = errors.New("student not found")
	ErrAlreadyExists = errors.New("student already exists")
)
