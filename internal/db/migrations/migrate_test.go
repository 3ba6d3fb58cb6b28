package migrations_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtline/court-reservation/internal/db/migrations"
	"github.com/courtline/court-reservation/internal/testutil"
)

func TestApply_IsIdempotent(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()

	var before int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&before))
	assert.GreaterOrEqual(t, before, 1)

	require.NoError(t, migrations.Apply(ctx, pool))

	var after int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&after))
	assert.Equal(t, before, after)
}
