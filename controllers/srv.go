// controllers/srv.go
package controllers

import (
	"errors"
	"net/http"

	"Gin_postgres_redis_loan_tool/app"
	"Gin_postgres_redis_loan_tool/db"
	"Gin_postgres_redis_loan_tool/session"

	"github.com/gin-gonic/gin"
)

type Srv struct {
	Repo       *db.Repo
	Activation *session.ActivationStore
	Licenses   app.LicenseValidator
	Cfg        app.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:       db.NewRepo(a.DB),
		Activation: a.Activation(),
		Licenses:   app.HMACValidator{Secret: a.Config.LicenseSecret},
		Cfg:        a.Config,
	}
}

// 统一错误映射：校验 400 / 不存在 404 / 冲突 409 / 其它 500（事务已回滚）
func fail(c *gin.Context, err error) {
	var ve *db.ValidationError
	var nf *db.NotFoundError
	var cf *db.ConflictError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, app.H{"error": ve.Error()})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, app.H{"error": nf.Error()})
	case errors.As(err, &cf):
		c.JSON(http.StatusConflict, app.H{"error": cf.Error()})
	default:
		app.Log.Errorw("request failed", "err", err)
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
	}
}
