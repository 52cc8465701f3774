package api

import (
	"github.com/gin-gonic/gin"

	"github.com/andrelmts/taskhive/internal/handlers"
)

// Project-rooted routes resolve the owning workspace from the project and run
// the membership check inside the handlers.
func registerProjectRoutes(api *gin.RouterGroup, sprints *handlers.SprintHandler, tasks *handlers.TaskHandler) {
	projects := api.Group("/projects/:projectID")
	{
		projects.POST("/sprints", sprints.Create)
		projects.GET("/sprints", sprints.List)
		projects.PATCH("/sprints/:sprintID", sprints.Update)
		projects.DELETE("/sprints/:sprintID", sprints.Delete)

		projects.POST("/tasks", tasks.Create)
		projects.GET("/tasks", tasks.List)
		projects.GET("/tasks/:taskID", tasks.Get)
		projects.PATCH("/tasks/:taskID", tasks.Update)
		projects.POST("/tasks/:taskID/move", tasks.Move)
		projects.DELETE("/tasks/:taskID", tasks.Delete)
	}
}
