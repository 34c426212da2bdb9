package db

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/bizdesk/internal/models"
)

func memoryOptions(t *testing.T) Options {
	return Options{Driver: "sqlite", DSN: fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()), Retries: 1}
}

func TestConnect_SQLiteAutoMigrateAndSeed(t *testing.T) {
	opts := memoryOptions(t)
	opts.Seed = true
	d, err := Connect(context.Background(), opts)
	require.NoError(t, err)

	for _, table := range requiredTables {
		assert.True(t, d.Migrator().HasTable(table), table)
	}
	require.NoError(t, Ping(context.Background(), d))

	var pro models.Plan
	require.NoError(t, d.Preload("Permissions").Where("code = ?", models.PlanPro).First(&pro).Error)
	require.Len(t, pro.Permissions, 1)
	assert.Equal(t, "*:*", pro.Permissions[0].Code())
}

func TestSeedIdempotent(t *testing.T) {
	d, err := Open(context.Background(), memoryOptions(t))
	require.NoError(t, err)
	require.NoError(t, Migrate(d, memoryOptions(t)))

	require.NoError(t, Seed(d))
	require.NoError(t, Seed(d))

	var planCount, permCount int64
	d.Model(&models.Plan{}).Count(&planCount)
	d.Model(&models.PlanPermission{}).Count(&permCount)
	assert.Equal(t, int64(len(plans)), planCount)

	want := 0
	for _, p := range plans {
		want += len(p.Permissions)
	}
	assert.Equal(t, int64(want), permCount)
}

func TestSeed_RestoresMissingPermission(t *testing.T) {
	d, err := Open(context.Background(), memoryOptions(t))
	require.NoError(t, err)
	require.NoError(t, Migrate(d, memoryOptions(t)))
	require.NoError(t, Seed(d))

	var free models.Plan
	require.NoError(t, d.Where("code = ?", models.PlanFree).First(&free).Error)
	require.NoError(t, d.Where("plan_id = ? AND resource_type = ?", free.ID, "client").Delete(&models.PlanPermission{}).Error)

	require.NoError(t, Seed(d))
	var n int64
	d.Model(&models.PlanPermission{}).Where("plan_id = ? AND resource_type = ?", free.ID, "client").Count(&n)
	assert.Equal(t, int64(1), n)

	var again models.Plan
	require.NoError(t, d.Where("code = ?", models.PlanFree).First(&again).Error)
	assert.Equal(t, free.ID, again.ID)
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "mysql", DSN: "x"})
	assert.ErrorIs(t, err, ErrUnknownDriver)

	_, err = Open(context.Background(), Options{Driver: "sqlite"})
	assert.Error(t, err)
}

func TestOpen_RetriesHonourContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	// a directory that cannot exist makes sqlite fail to open
	_, err := Open(ctx, Options{Driver: "sqlite", DSN: "file:/nonexistent/dir/x.db?mode=ro", Retries: 5, RetryDelay: time.Hour})
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Minute)
}
