package routes

import (
	"order-service/controllers"
	"order-service/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterOrderRoutes(r *gin.Engine, oc *controllers.OrderController, pc *controllers.PaymentController) {
	orders := r.Group("/orders")
	orders.Use(middleware.AuthMiddleware())

	orders.POST("", oc.CreateOrder)
	orders.GET("/my/orders", oc.GetOrders)
	orders.GET("/:id", oc.GetOrderByID)

	orders.POST("/:id/upload-payment", pc.UploadPayment)
	orders.POST("/:id/payments", pc.UploadPayment)
	orders.GET("/:id/payments", pc.ListOrderPayments)

	admin := orders.Group("")
	admin.Use(middleware.AdminOnly())
	admin.GET("/admin/all", oc.GetAllOrders)
	admin.GET("/admin/stats", oc.GetOrderStats)
	admin.GET("/admin/payments/pending", pc.GetPendingPayments)
	admin.PATCH("/:id/status", oc.UpdateOrderStatus)
	admin.DELETE("/:id/items/:itemId", oc.RemoveOrderItem)
	admin.PATCH("/payments/:paymentId/verify", pc.VerifyPayment)
}
