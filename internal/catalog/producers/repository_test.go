package producers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestConstraintViolationMapping(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "uq_producers_name"}
	require.True(t, isConstraintViolation(dup, "uq_producers_name"))
	require.True(t, isConstraintViolation(fmt.Errorf("insert: %w", dup), "uq_producers_name"))

	require.False(t, isConstraintViolation(dup, "uq_categories_name"))
	require.False(t, isConstraintViolation(errors.New("connection reset"), "uq_producers_name"))
}
