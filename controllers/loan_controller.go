// controllers/loan_controller.go
package controllers

import (
	"net/http"
	"time"

	"Gin_postgres_redis_loan_tool/app"
	"Gin_postgres_redis_loan_tool/db"

	"github.com/gin-gonic/gin"
)

type LoanController struct{ *Srv }

func NewLoanController(s *Srv) *LoanController { return &LoanController{Srv: s} }

type createLoansReq struct {
	Borrower     string              `json:"borrower" binding:"required"`
	Signature    string              `json:"signature"`
	GreenNumbers []string            `json:"greenNumbers"`
	Equipment    []db.EquipmentInput `json:"equipment"`
	LoanDate     string              `json:"loanDate"` // YYYY-MM-DD，留空 = 今天
}

// 批量借出：一个借用人、一个签名，一次借走多件，整批要么全成要么全不成
func (lc *LoanController) CreateLoans(c *gin.Context) {
	var req createLoansReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	var loanDate time.Time
	if req.LoanDate != "" {
		d, err := time.Parse("2006-01-02", req.LoanDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": "loanDate must be YYYY-MM-DD"})
			return
		}
		loanDate = d
	}

	loans, err := lc.Repo.CreateLoans(c.Request.Context(), db.CreateLoansInput{
		BorrowerName: req.Borrower,
		Signature:    req.Signature,
		GreenNumbers: req.GreenNumbers,
		Equipment:    req.Equipment,
		LoanDate:     loanDate,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"loans": loans})
}

func (lc *LoanController) ListLoans(c *gin.Context) {
	rows, err := lc.Repo.ListLoans(c.Request.Context(), db.LoansQuery{
		Status:   c.Query("status"), // "", "active", "returned", "overdue"
		Borrower: c.Query("borrower"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"loans": rows})
}

type returnLoansReq struct {
	LoanIDs []string `json:"loanIds" binding:"required"`
}

// 归还（单个或批量）
func (lc *LoanController) ReturnLoans(c *gin.Context) {
	var req returnLoansReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	loans, err := lc.Repo.ReturnLoans(c.Request.Context(), req.LoanIDs)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"loans": loans})
}

// 延期：只有逾期的借出单可以延 7 天
func (lc *LoanController) ExtendLoan(c *gin.Context) {
	l, err := lc.Repo.ExtendLoan(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}
