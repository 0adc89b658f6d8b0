package postgres

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/fruitbid/server/internal/errs"
)

func TestSettingsRepo_Get(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSettingsRepo(db)

	mock.ExpectQuery(`SELECT value FROM settings WHERE key=\$1`).
		WithArgs("discount_pct").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow("20"))

	v, err := r.Get(context.Background(), "discount_pct")
	require.NoError(t, err)
	require.Equal(t, "20", v)
}

func TestSettingsRepo_Get_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSettingsRepo(db)

	mock.ExpectQuery(`SELECT value FROM settings WHERE key=\$1`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"value"}))

	_, err := r.Get(context.Background(), "missing")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSettingsRepo_ClaimMarker_Won(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSettingsRepo(db)

	mock.ExpectExec(`INSERT INTO settings \(key, value\) VALUES \(\$1, \$2\)`).
		WithArgs("billing_calculated", "2026-08-21T12:00:00Z").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	won, err := r.ClaimMarker(context.Background(), "billing_calculated", "2026-08-21T12:00:00Z")
	require.NoError(t, err)
	require.True(t, won)
}

func TestSettingsRepo_ClaimMarker_AlreadyClaimed(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSettingsRepo(db)

	// The conditional upsert touches no row when the marker already holds
	// the cycle value.
	mock.ExpectExec(`INSERT INTO settings \(key, value\) VALUES \(\$1, \$2\)`).
		WithArgs("billing_calculated", "2026-08-21T12:00:00Z").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	won, err := r.ClaimMarker(context.Background(), "billing_calculated", "2026-08-21T12:00:00Z")
	require.NoError(t, err)
	require.False(t, won)
}

func TestSettingsRepo_DeleteByPrefix(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSettingsRepo(db)

	mock.ExpectExec(`DELETE FROM settings WHERE key LIKE \$1 \|\| '%'`).
		WithArgs("billing_").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	require.NoError(t, r.DeleteByPrefix(context.Background(), "billing_"))
	require.NoError(t, mock.ExpectationsWereMet())
}
