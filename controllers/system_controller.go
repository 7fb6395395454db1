// controllers/system_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"Gin_postgres_redis_loan_tool/app"

	"github.com/gin-gonic/gin"
)

type SystemController struct{ *Srv }

func NewSystemController(s *Srv) *SystemController { return &SystemController{Srv: s} }

// 手动触发状态对账（幂等，随便跑）
func (sc *SystemController) Sync(c *gin.Context) {
	onLoan, err := sc.Repo.SyncStatuses(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "onLoan": onLoan})
}

// 操作流水
func (sc *SystemController) ListActions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	logs, err := sc.Repo.ListActions(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"actions": logs})
}
