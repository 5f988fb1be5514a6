package routes

import (
	"product-importer/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires all application routes to their controllers. The
// upload route carries its own tighter rate limit on top of the global one.
func RegisterRoutes(
	r *gin.Engine,
	products *controllers.ProductController,
	imports *controllers.ImportController,
	webhooks *controllers.WebhookController,
	uploadLimit gin.HandlerFunc,
) {
	r.POST("/upload", uploadLimit, imports.UploadCSV)
	r.GET("/events/:task_id", imports.StreamEvents)
	r.GET("/tasks/:id", imports.GetTask)

	productRoutes := r.Group("/products")
	{
		productRoutes.GET("", products.ListProducts)
		productRoutes.POST("", products.CreateProduct)
		productRoutes.PATCH("/:id", products.UpdateProduct)
		productRoutes.DELETE("/:id", products.DeleteProduct)
		productRoutes.POST("/bulk_delete", products.BulkDeleteProducts)
	}

	webhookRoutes := r.Group("/webhooks")
	{
		webhookRoutes.GET("", webhooks.ListWebhooks)
		webhookRoutes.POST("", webhooks.CreateWebhook)
		webhookRoutes.PATCH("/:id", webhooks.UpdateWebhook)
		webhookRoutes.DELETE("/:id", webhooks.DeleteWebhook)
		webhookRoutes.POST("/:id/test", webhooks.TestWebhook)
	}
}
