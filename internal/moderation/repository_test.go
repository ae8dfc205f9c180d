package moderation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestMapTxErrorSerializationFailure(t *testing.T) {
	serialization := &pgconn.PgError{Code: "40001", Message: "could not serialize access due to concurrent update"}

	require.ErrorIs(t, mapTxError(serialization), ErrInvalidState)
	require.ErrorIs(t, mapTxError(fmt.Errorf("mark decided: %w", serialization)), ErrInvalidState)
}

func TestMapTxErrorPassesOthersThrough(t *testing.T) {
	require.ErrorIs(t, mapTxError(ErrNotFound), ErrNotFound)

	plain := errors.New("connection reset")
	require.Equal(t, plain, mapTxError(plain))

	other := &pgconn.PgError{Code: "23505", ConstraintName: "uq_categories_name"}
	require.Equal(t, error(other), mapTxError(other))
}
