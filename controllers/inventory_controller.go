// controllers/inventory_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"Gin_postgres_redis_loan_tool/app"
	"Gin_postgres_redis_loan_tool/db"

	"github.com/gin-gonic/gin"
)

type ItemController struct{ *Srv }

func NewItemController(s *Srv) *ItemController { return &ItemController{Srv: s} }

// 列表（含当前借用人、逾期标记）
func (ic *ItemController) ListItems(c *gin.Context) {
	q := db.ItemsQuery{
		Q:      c.Query("q"),
		Status: c.Query("status"), // "", "on_loan", "available", "overdue"
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := ic.Repo.ListItemsWithCurrentLoan(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"total": res.Total, "items": res.Items})
}

func (ic *ItemController) CreateItem(c *gin.Context) {
	var in db.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	it, err := ic.Repo.CreateItem(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

func (ic *ItemController) GetItem(c *gin.Context) {
	it, err := ic.Repo.FindItemByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (ic *ItemController) UpdateItem(c *gin.Context) {
	var in db.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	it, err := ic.Repo.UpdateItem(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (ic *ItemController) DeleteItem(c *gin.Context) {
	if err := ic.Repo.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// 批量导入：前端把表格解析成行再传上来，这里只做逐行 upsert
func (ic *ItemController) ImportItems(c *gin.Context) {
	var in struct {
		Rows []db.ItemInput `json:"rows" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	res, err := ic.Repo.ImportItems(c.Request.Context(), in.Rows)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "created": res.Created, "updated": res.Updated})
}
