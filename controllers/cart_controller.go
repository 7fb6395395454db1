// controllers/cart_controller.go
package controllers

import (
	"net/http"

	"Gin_postgres_redis_loan_tool/app"
	"Gin_postgres_redis_loan_tool/db"

	"github.com/gin-gonic/gin"
)

type CartController struct{ *Srv }

func NewCartController(s *Srv) *CartController { return &CartController{Srv: s} }

func (cc *CartController) ListTemplates(c *gin.Context) {
	ts, err := cc.Repo.ListCartTemplates(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"templates": ts})
}

func (cc *CartController) CreateTemplate(c *gin.Context) {
	var in db.CartTemplateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	t, err := cc.Repo.CreateCartTemplate(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (cc *CartController) UpdateTemplate(c *gin.Context) {
	var in db.CartTemplateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	t, err := cc.Repo.UpdateCartTemplate(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (cc *CartController) DeleteTemplate(c *gin.Context) {
	if err := cc.Repo.DeleteCartTemplate(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
