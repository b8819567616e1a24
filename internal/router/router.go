package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Kirill-Alexeev/taskplanner/internal/handlers"
	"github.com/Kirill-Alexeev/taskplanner/internal/middleware"
	"github.com/Kirill-Alexeev/taskplanner/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.POST("/logout", middleware.AuthMiddleware(), handlers.Logout)
			auth.GET("/profile", middleware.AuthMiddleware(), handlers.Profile)
			auth.PUT("/profile", middleware.AuthMiddleware(), handlers.UpdateProfile)
			auth.POST("/change-password", middleware.AuthMiddleware(), handlers.ChangePassword)
		}

		tasks := api.Group("/tasks", middleware.AuthMiddleware())
		{
			tasks.GET("", handlers.ListTasks)
			tasks.POST("", handlers.CreateTask)
			tasks.GET("/personal", handlers.PersonalTasks)
			tasks.GET("/workspace", handlers.WorkspaceTasks)
			tasks.GET("/:task_id", handlers.GetTask)
			tasks.PUT("/:task_id", handlers.UpdateTask)
			tasks.DELETE("/:task_id", handlers.DeleteTask)
			tasks.POST("/:task_id/change_status", handlers.ChangeTaskStatus)
		}

		subtasks := api.Group("/subtasks", middleware.AuthMiddleware())
		{
			subtasks.GET("", handlers.ListSubtasks)
			subtasks.POST("", handlers.CreateSubtask)
			subtasks.GET("/:subtask_id", handlers.GetSubtask)
			subtasks.PUT("/:subtask_id", handlers.UpdateSubtask)
			subtasks.DELETE("/:subtask_id", handlers.DeleteSubtask)
		}

		comments := api.Group("/comments", middleware.AuthMiddleware())
		{
			comments.GET("", handlers.ListComments)
			comments.POST("", handlers.CreateComment)
			comments.GET("/:comment_id", handlers.GetComment)
			comments.PUT("/:comment_id", handlers.UpdateComment)
			comments.DELETE("/:comment_id", handlers.DeleteComment)
		}

		tags := api.Group("/tags", middleware.AuthMiddleware())
		{
			tags.GET("", handlers.ListTags)
			tags.POST("", handlers.CreateTag)
			tags.GET("/:tag_id", handlers.GetTag)
			tags.PUT("/:tag_id", handlers.UpdateTag)
			tags.DELETE("/:tag_id", handlers.DeleteTag)
		}

		workspaces := api.Group("/workspaces", middleware.AuthMiddleware())
		{
			workspaces.GET("", handlers.ListWorkspaces)
			workspaces.POST("", handlers.CreateWorkspace)
			workspaces.GET("/:workspace_id", handlers.GetWorkspace)
			workspaces.PUT("/:workspace_id", handlers.UpdateWorkspace)
			workspaces.DELETE("/:workspace_id", handlers.DeleteWorkspace)
			workspaces.POST("/:workspace_id/members", handlers.AddMember)
		}

		memberships := api.Group("/memberships", middleware.AuthMiddleware())
		{
			memberships.GET("", handlers.ListMemberships)
			memberships.DELETE("/:membership_id", handlers.DeleteMembership)
		}
	}

	return r
}
