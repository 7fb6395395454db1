// app/syncmw.go
package app

import (
	"Gin_postgres_redis_loan_tool/db"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// SyncOnDrift 读路径上顺手做一次状态对账，redis SetNX 限频。
// 对账是幂等的，多跑无害；失败只记日志，不挡请求。
func SyncOnDrift(repo *db.Repo, rdb *redis.Client, throttle time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "inventory:sync:last"
		if ok, _ := rdb.SetNX(c, key, "1", throttle).Result(); ok {
			if _, err := repo.SyncStatuses(c.Request.Context()); err != nil {
				Log.Warnw("drift sync failed", "err", err)
			}
		}
		c.Next()
	}
}
