package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestViolationDetection(t *testing.T) {
	unique := &pgconn.PgError{Code: pgCodeUniqueViolation}
	fk := &pgconn.PgError{Code: pgCodeForeignKeyViolation}

	assert.True(t, isUniqueViolation(unique))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", unique)))
	assert.False(t, isUniqueViolation(fk))
	assert.False(t, isUniqueViolation(errors.New("23505")))

	assert.True(t, isForeignKeyViolation(fk))
	assert.False(t, isForeignKeyViolation(unique))
}

func TestErrorClosuresWrap(t *testing.T) {
	cause := errors.New("connection reset")

	err := errFailedRecordTokenUsage(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to record token usage: connection reset", err.Error())

	err = errFailedRunMigration("0001_init.sql", 3, cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "0001_init.sql (statement 3)")
}
