package routes

import (
	"Gin_postgres_redis_loan_tool/app"
	"Gin_postgres_redis_loan_tool/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	itemCtl := controllers.NewItemController(s)
	loanCtl := controllers.NewLoanController(s)
	cartCtl := controllers.NewCartController(s)
	licCtl := controllers.NewLicenseController(s)
	sysCtl := controllers.NewSystemController(s)

	// 复用的中间件
	licenseMW := app.LicenseRequired(a.Activation())
	syncMW := app.SyncOnDrift(s.Repo, a.RDB, a.Config.SyncThrottle)

	// ------------------------------
	// 激活（公开）
	// ------------------------------
	lic := r.Group("/api/license")
	{
		lic.POST("/activate", licCtl.Activate)
		lic.GET("/status", licCtl.Status)
	}

	// ------------------------------
	// 库存
	// ------------------------------
	items := r.Group("/api/items", licenseMW)
	{
		items.GET("", syncMW, itemCtl.ListItems) // ?q=&status=&page=&size=
		items.POST("", itemCtl.CreateItem)
		items.GET("/:id", itemCtl.GetItem)
		items.PUT("/:id", itemCtl.UpdateItem)
		items.DELETE("/:id", itemCtl.DeleteItem)
		items.POST("/import", itemCtl.ImportItems)
	}

	// ------------------------------
	// 借还
	// ------------------------------
	loans := r.Group("/api/loans", licenseMW)
	{
		loans.GET("", syncMW, loanCtl.ListLoans) // ?status=active|returned|overdue&borrower=
		loans.POST("", loanCtl.CreateLoans)
		loans.POST("/return", loanCtl.ReturnLoans)
		loans.POST("/:id/extend", loanCtl.ExtendLoan)
	}

	// ------------------------------
	// 购物车模板
	// ------------------------------
	carts := r.Group("/api/cart-templates", licenseMW)
	{
		carts.GET("", cartCtl.ListTemplates)
		carts.POST("", cartCtl.CreateTemplate)
		carts.PUT("/:id", cartCtl.UpdateTemplate)
		carts.DELETE("/:id", cartCtl.DeleteTemplate)
	}

	// ------------------------------
	// 对账 / 操作流水
	// ------------------------------
	sys := r.Group("/api", licenseMW)
	{
		sys.POST("/sync", sysCtl.Sync)
		sys.GET("/actions", sysCtl.ListActions)
	}
}
