package metadata

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/tradeauth/internal/client/client"
	"github.com/dmitrijs2005/tradeauth/internal/dbx"
)

// setupDB returns a state database migrated with the CLI's own schema.
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.OpenStateDB(context.Background(), "file:"+filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRepository_Lifecycle(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	v, err := r.Get(ctx, keySessionToken)
	require.NoError(t, err)
	assert.Nil(t, v, "unknown keys read as nil")

	require.NoError(t, r.Set(ctx, keySessionToken, []byte("t-1")))
	require.NoError(t, r.Set(ctx, keySessionToken, []byte("t-2")))
	v, err = r.Get(ctx, keySessionToken)
	require.NoError(t, err)
	assert.Equal(t, []byte("t-2"), v)

	require.NoError(t, r.Delete(ctx, keySessionToken))
	require.NoError(t, r.Delete(ctx, keySessionToken))
	v, err = r.Get(ctx, keySessionToken)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestRepository_ClearLeavesEmptyTable(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	for _, k := range []string{keySessionToken, keySessionUser, keySessionExpires} {
		require.NoError(t, r.Set(ctx, k, []byte(k)))
	}
	require.NoError(t, r.Clear(ctx))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM metadata`).Scan(&n))
	assert.Zero(t, n)
}

func TestRepository_SetInsideRolledBackTx(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := NewSQLiteRepository(tx).Set(ctx, keySessionUser, []byte("alice")); err != nil {
			return err
		}
		return sql.ErrTxDone
	})
	require.ErrorIs(t, err, sql.ErrTxDone)

	v, err := NewSQLiteRepository(db).Get(ctx, keySessionUser)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestRepository_DBErrorsCarryCodes(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	tests := []struct {
		name string
		call func() error
		code string
		key  any
	}{
		{"get", func() error { _, err := r.Get(ctx, "k"); return err }, "METADATA_GET_FAILED", "k"},
		{"set", func() error { return r.Set(ctx, "k", []byte("v")) }, "METADATA_SET_FAILED", "k"},
		{"delete", func() error { return r.Delete(ctx, "k") }, "METADATA_DELETE_FAILED", "k"},
		{"clear", func() error { return r.Clear(ctx) }, "METADATA_CLEAR_FAILED", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			oopsErr, ok := oops.AsOops(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, oopsErr.Code())
			assert.Equal(t, tt.key, oopsErr.Context()["key"])
		})
	}
}
