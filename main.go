package main

import (
	"fmt"
	"log"
	"os"
	"visitperk-backend/config"
	"visitperk-backend/controllers"
	"visitperk-backend/models"
	"visitperk-backend/routes"
	"visitperk-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.User{},
		&models.Store{},
		&models.StoreCategory{},
		&models.StoreImage{},
		&models.Customer{},
		&models.Visit{},
		&models.ReminderLog{},
	)
}

func main() {
	settings, err := config.LoadReminderSettings()
	if err != nil {
		log.Fatalf("Invalid reminder settings: %v", err)
	}

	visitStore := services.NewGormVisitStore(config.DB)
	clock := services.SystemClock()
	reminders := services.NewReminderService(
		visitStore,
		services.NewTwilioNotifier(),
		clock,
		settings,
	)

	// Optional in-process trigger; most deployments drive /internal/reminders/run
	// from external cron instead.
	if spec := os.Getenv("REMINDER_CRON"); spec != "" {
		if _, err := reminders.StartScheduler(spec); err != nil {
			log.Fatalf("Failed to start reminder scheduler: %v", err)
		}
	}

	visitController := &controllers.VisitController{
		Visits:   visitStore,
		Clock:    clock,
		Settings: settings,
	}
	triggerController := &controllers.TriggerController{
		Reminders: reminders,
		Secret:    settings.TriggerSecret,
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r := routes.SetupRouter(visitController, triggerController)
	printRoutes(r)
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
