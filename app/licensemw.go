package app

import (
	"Gin_postgres_redis_loan_tool/session"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// 激活门槛：license 没激活前，业务路由全部不可达
func LicenseRequired(act *session.ActivationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, err := act.Get(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, H{"error": "activation check failed"})
			return
		}
		if a == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "license not activated"})
			return
		}
		c.Set("company", a.Company)
		c.Next()
	}
}

// LicenseValidator 外部协作方的窄接口，真正的 key 生成/校验逻辑不在本仓库
type LicenseValidator interface {
	Validate(company, serialKey string) bool
}

// HMACValidator 对称校验：serial key = HMAC(secret, 公司名) 的前 20 个十六进制字符
type HMACValidator struct {
	Secret string
}

func (v HMACValidator) Validate(company, serialKey string) bool {
	company = strings.ToLower(strings.TrimSpace(company))
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(serialKey), "-", ""))
	if company == "" || key == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(v.Secret))
	mac.Write([]byte(company))
	want := strings.ToUpper(hex.EncodeToString(mac.Sum(nil))[:20])
	return hmac.Equal([]byte(want), []byte(key))
}
