package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups every endpoint handler mounted by RegisterRoutes.
type Handlers struct {
	Documents   *DocumentHandler
	Attachments *AttachmentHandler
	Supporting  *SupportingAttachmentHandler
	Compile     *CompileHandler
	Metrics     *MetricsHandler
}

// RegisterRoutes mounts probe endpoints at the root and the API under prefix.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, middlewares ...gin.HandlerFunc) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix, middlewares...)
	api.GET("/health", h.Metrics.Health)
	api.GET("/system/metrics", h.Metrics.System)

	documents := api.Group("/documents")
	documents.POST("", h.Documents.Create)
	documents.GET("", h.Documents.List)
	documents.GET("/:id", h.Documents.Get)
	documents.PUT("/:id", h.Documents.Update)
	documents.DELETE("/:id", h.Documents.Delete)
	documents.PUT("/:id/body", h.Documents.UploadBody)
	documents.DELETE("/:id/body", h.Documents.DeleteBody)

	documents.GET("/:id/attachments", h.Attachments.List)
	documents.POST("/:id/attachments", h.Attachments.Create)
	documents.PUT("/:id/attachments/order", h.Attachments.Reorder)
	documents.PUT("/:id/attachments/:attachmentId", h.Attachments.Update)
	documents.DELETE("/:id/attachments/:attachmentId", h.Attachments.Delete)
	documents.POST("/:id/attachments/:attachmentId/move", h.Attachments.Move)
	documents.GET("/:id/attachments/:attachmentId/preview", h.Attachments.Preview)
	documents.GET("/:id/attachments/:attachmentId/file", h.Attachments.Download)

	documents.GET("/:id/supporting-attachments", h.Supporting.List)
	documents.POST("/:id/supporting-attachments", h.Supporting.Create)
	documents.PUT("/:id/supporting-attachments/order", h.Supporting.Reorder)
	documents.PUT("/:id/supporting-attachments/:attachmentId", h.Supporting.Update)
	documents.DELETE("/:id/supporting-attachments/:attachmentId", h.Supporting.Delete)
	documents.POST("/:id/supporting-attachments/:attachmentId/move", h.Supporting.Move)
	documents.GET("/:id/supporting-attachments/:attachmentId/file", h.Supporting.Download)

	documents.POST("/:id/compile", h.Compile.Compile)
	documents.GET("/:id/preview", h.Compile.Preview)
	api.GET("/compile-jobs/:jobId", h.Compile.Status)
	api.GET("/export/:token", h.Compile.Export)
}
