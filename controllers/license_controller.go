// controllers/license_controller.go
package controllers

import (
	"net/http"

	"Gin_postgres_redis_loan_tool/app"

	"github.com/gin-gonic/gin"
)

type LicenseController struct{ *Srv }

func NewLicenseController(s *Srv) *LicenseController { return &LicenseController{Srv: s} }

type activateReq struct {
	Company   string `json:"company" binding:"required"`
	SerialKey string `json:"serialKey" binding:"required"`
}

func (lc *LicenseController) Activate(c *gin.Context) {
	var req activateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if !lc.Licenses.Validate(req.Company, req.SerialKey) {
		c.JSON(http.StatusForbidden, app.H{"error": "invalid license key"})
		return
	}
	if err := lc.Activation.Activate(c.Request.Context(), req.Company); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (lc *LicenseController) Status(c *gin.Context) {
	a, err := lc.Activation.Get(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if a == nil {
		c.JSON(http.StatusOK, app.H{"activated": false})
		return
	}
	c.JSON(http.StatusOK, app.H{"activated": true, "company": a.Company})
}
