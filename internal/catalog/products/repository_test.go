package products

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestRelationViolationMapping(t *testing.T) {
	for _, constraint := range []string{"fk_products_category", "fk_products_producer"} {
		fk := &pgconn.PgError{Code: "23503", ConstraintName: constraint}
		require.True(t, isRelationViolation(fk), constraint)
		require.True(t, isRelationViolation(fmt.Errorf("insert: %w", fk)), constraint)
	}

	require.False(t, isRelationViolation(&pgconn.PgError{Code: "23505", ConstraintName: "uq_categories_name"}))
	require.False(t, isRelationViolation(errors.New("connection reset")))
	require.False(t, isRelationViolation(nil))
}
