package main

import (
	"Gin_postgres_redis_loan_tool/app"
	"Gin_postgres_redis_loan_tool/config"
	"Gin_postgres_redis_loan_tool/db"
	"Gin_postgres_redis_loan_tool/routes"
	"context"
	"log"
	"os"

	"github.com/robfig/cron/v3"
)

func main() {
	config.LoadEnv()
	application := app.MustNew()
	defer application.Close()

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	routes.RegisterRoutes(r, application)

	// 启动时先对账一遍，修掉上次异常退出可能留下的状态漂移。
	// 失败只记日志，不挡启动。
	repo := db.NewRepo(application.DB)
	if onLoan, err := repo.SyncStatuses(context.Background()); err != nil {
		app.Log.Warnw("startup status sync failed", "err", err)
	} else {
		app.Log.Infow("startup status sync done", "onLoan", onLoan)
	}

	// 可选：定时对账
	if spec := application.Config.SyncCron; spec != "" {
		cr := cron.New()
		if _, err := cr.AddFunc(spec, func() {
			if _, err := repo.SyncStatuses(context.Background()); err != nil {
				app.Log.Warnw("scheduled status sync failed", "err", err)
			}
		}); err != nil {
			app.Log.Warnw("bad SYNC_CRON, scheduled sync disabled", "spec", spec, "err", err)
		} else {
			cr.Start()
			defer cr.Stop()
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	log.Printf("listening on :%s", port)
	_ = r.Run(":" + port)
}
