package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/resultsportal/internal/app/controllers"
	"github.com/yigit/resultsportal/internal/app/models"
	"github.com/yigit/resultsportal/internal/middleware"
)

// Controllers groups every HTTP handler the router mounts
type Controllers struct {
	Auth   *controllers.AuthController
	User   *controllers.UserController
	File   *controllers.FileController
	Health *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, ctrl Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/ping", ctrl.Health.Ping)

	api := router.Group("/api")
	api.GET("/health", ctrl.Health.Health)

	staff := authMiddleware.Authorize(models.RoleAdmin, models.RoleFaculty)
	adminOnly := authMiddleware.Authorize(models.RoleAdmin)

	// --- Users ---
	users := api.Group("/users")
	{
		users.POST("/register", ctrl.Auth.Register)
		users.POST("/login", ctrl.Auth.Login)
		users.POST("/logout", ctrl.Auth.Logout)

		authenticated := users.Group("")
		authenticated.Use(authMiddleware.Authenticate())
		{
			authenticated.GET("/profile", ctrl.User.GetProfile)
			authenticated.PUT("/profile", ctrl.User.UpdateProfile)
			authenticated.PUT("/change-password", ctrl.Auth.ChangePassword)

			authenticated.GET("/devices", ctrl.Auth.GetDevices)
			authenticated.DELETE("/devices", ctrl.Auth.RemoveAllDevices)
			authenticated.DELETE("/devices/:deviceId", ctrl.Auth.RemoveDevice)

			authenticated.GET("", adminOnly, ctrl.User.ListUsers)
			authenticated.DELETE("/:id", adminOnly, ctrl.User.DeleteUser)
		}
	}

	// --- Files ---
	files := api.Group("/files")
	files.Use(authMiddleware.Authenticate())
	{
		files.GET("/get-files", ctrl.File.GetFiles)
		files.GET("/download/*key", ctrl.File.Download)

		files.POST("/upload", staff, ctrl.File.Upload)
		files.POST("/check-file", staff, ctrl.File.CheckFile)
		files.POST("/save-file", staff, ctrl.File.SaveFile)
		files.POST("/analyze", staff, ctrl.File.Analyze)

		files.DELETE("/delete/*key", adminOnly, ctrl.File.Delete)
		files.POST("/synchronize", adminOnly, ctrl.File.Synchronize)
	}
}
