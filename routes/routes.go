package routes

import (
	"os"
	"visitperk-backend/config"
	"visitperk-backend/controllers"
	"visitperk-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter(visits *controllers.VisitController, trigger *controllers.TriggerController) *gin.Engine {
	r := gin.Default()

	frontend := os.Getenv("FRONTEND_ORIGIN")
	if frontend == "" {
		frontend = "http://localhost:3000"
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{frontend},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	// Periodic trigger, authenticated by shared secret instead of JWT
	internal := r.Group("/internal")
	{
		internal.GET("/reminders/run", trigger.Run)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Customer routes
		customers := api.Group("/customers")
		{
			customers.POST("", controllers.CreateCustomer)
			customers.GET("", controllers.GetCustomers)
			customers.GET("/:id", controllers.GetCustomer)
			customers.PUT("/:id", controllers.UpdateCustomer)
			customers.DELETE("/:id", controllers.DeleteCustomer)
		}

		// Visit routes
		visitRoutes := api.Group("/visits")
		{
			visitRoutes.POST("", visits.BookVisit)
			visitRoutes.GET("", visits.GetVisits)
			visitRoutes.GET("/:id", visits.GetVisit)
			visitRoutes.PUT("/:id/status", visits.UpdateVisitStatus)
		}

		// Store page routes
		store := api.Group("/store")
		{
			store.GET("/profile", controllers.GetStoreProfile)
			store.PUT("/profile", controllers.UpdateStoreProfile)
			store.PUT("/working-hours", controllers.UpdateWorkingHours)

			store.POST("/categories", controllers.CreateCategory)
			store.PUT("/categories/reorder", controllers.ReorderCategories)
			store.DELETE("/categories/:id", controllers.DeleteCategory)

			store.POST("/images", controllers.CreateImage)
			store.PUT("/images/reorder", controllers.ReorderImages)
			store.DELETE("/images/:id", controllers.DeleteImage)
		}

		// Dashboard routes
		api.GET("/dashboard", controllers.GetDashboardOverview)
	}

	return r
}
