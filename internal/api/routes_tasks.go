package api

import (
	"github.com/gin-gonic/gin"

	"github.com/andrelmts/taskhive/internal/handlers"
)

// Task-rooted routes resolve task, project, and workspace inside the handlers.
func registerTaskRoutes(api *gin.RouterGroup, comments *handlers.CommentHandler, attachments *handlers.AttachmentHandler, timeLogs *handlers.TimeLogHandler) {
	tasks := api.Group("/tasks/:taskID")
	{
		tasks.POST("/comments", comments.Create)
		tasks.GET("/comments", comments.List)
		tasks.DELETE("/comments/:commentID", comments.Delete)

		tasks.POST("/attachments", attachments.Create)
		tasks.GET("/attachments", attachments.List)
		tasks.DELETE("/attachments/:attachmentID", attachments.Delete)

		tasks.POST("/time-logs", timeLogs.Create)
		tasks.GET("/time-logs", timeLogs.List)
	}
}
