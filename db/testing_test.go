package db

import (
	"context"
	"testing"
	"time"

	"Gin_postgres_redis_loan_tool/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 测试用固定时钟
var testNow = time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// 内存库：所有操作必须走同一个连接
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(gdb))

	r := NewRepo(gdb)
	r.Now = func() time.Time { return testNow }
	return r
}

func seedItem(t *testing.T, r *Repo, green, name string) *models.InventoryItem {
	t.Helper()
	it, err := r.CreateItem(context.Background(), ItemInput{
		GreenNumber: green,
		Name:        name,
		Quantity:    1,
		Category:    "equipment",
	})
	require.NoError(t, err)
	return it
}

func itemStatus(t *testing.T, r *Repo, green string) string {
	t.Helper()
	it, err := r.FindItemByGreenNumber(context.Background(), green)
	require.NoError(t, err)
	return it.Status
}

func loanCount(t *testing.T, r *Repo, where string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, r.DB.Model(&models.Loan{}).Where(where, args...).Count(&n).Error)
	return n
}
