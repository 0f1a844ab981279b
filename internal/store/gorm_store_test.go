package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&Entry{}))
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestGormCollectionEmpty(t *testing.T) {
	c := NewGormCollection[item](setupTestDB(t), "things")

	items, err := c.ReadAll(context.Background())

	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGormCollectionReplaceKeepsOrder(t *testing.T) {
	ctx := context.Background()
	c := NewGormCollection[item](setupTestDB(t), "things")

	require.NoError(t, c.WriteAll(ctx, []item{{ID: "1"}, {ID: "2"}, {ID: "3"}}))
	require.NoError(t, c.WriteAll(ctx, []item{{ID: "3"}, {ID: "1"}}))

	got, err := c.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: "3"}, {ID: "1"}}, got)
}

func TestGormCollectionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	a := NewGormCollection[item](db, "a")
	b := NewGormCollection[item](db, "b")

	require.NoError(t, a.WriteAll(ctx, []item{{ID: "a1"}}))
	require.NoError(t, b.WriteAll(ctx, []item{{ID: "b1"}, {ID: "b2"}}))
	require.NoError(t, a.WriteAll(ctx, nil))

	gotA, err := a.ReadAll(ctx)
	require.NoError(t, err)
	gotB, err := b.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, gotA)
	assert.Len(t, gotB, 2)
}
