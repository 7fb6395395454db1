package app

import (
	"Gin_postgres_redis_loan_tool/db"
	"Gin_postgres_redis_loan_tool/session"
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Config Config

	activation *session.ActivationStore
}

// Config 从环境变量读取
type Config struct {
	RedisAddr     string
	RedisPwd      string
	WebOrigin     string
	LicenseSecret string
	SyncCron      string        // 为空则不跑定时对账
	SyncThrottle  time.Duration // 读路径上的顺手对账最小间隔
}

func (a *App) Activation() *session.ActivationStore { return a.activation }

func MustNew() *App {
	cfg := loadConfig()
	InitLogger()

	// --- DB: Postgres ---
	dbConn := db.ConnectDB()

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	// --- Gin ---
	r := gin.Default()
	useCORS(r, cfg.WebOrigin)
	a := &App{
		Router: r, DB: dbConn, RDB: rdb, Config: cfg,
		activation: session.NewActivationStore(rdb),
	}
	return a
}

func (a *App) Close() { _ = a.RDB.Close() }

func loadConfig() Config {
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}
	throttle := 5 * time.Minute
	if d, err := time.ParseDuration(get("SYNC_THROTTLE_SECONDS", "300") + "s"); err == nil {
		throttle = d
	}
	return Config{
		RedisAddr:     get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:      os.Getenv("REDIS_PASSWORD"),
		WebOrigin:     get("WEB_ORIGIN", "http://localhost:3000"),
		LicenseSecret: get("LICENSE_SECRET", "dev-license-secret"),
		SyncCron:      strings.TrimSpace(os.Getenv("SYNC_CRON")),
		SyncThrottle:  throttle,
	}
}
