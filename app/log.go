// app/log.go
package app

import (
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var Log *zap.SugaredLogger = zap.NewNop().Sugar()

func InitLogger() {
	var l *zap.Logger
	var err error
	if os.Getenv(gin.EnvGinMode) == gin.ReleaseMode {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return
	}
	Log = l.Sugar()
}
