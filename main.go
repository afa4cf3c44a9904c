package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/SOLSKEY/bbb-auto-sales-dms-sub003/config"
	"github.com/SOLSKEY/bbb-auto-sales-dms-sub003/controllers"
	"github.com/SOLSKEY/bbb-auto-sales-dms-sub003/models"
	"github.com/SOLSKEY/bbb-auto-sales-dms-sub003/routes"
	"github.com/SOLSKEY/bbb-auto-sales-dms-sub003/services"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.User{},
		&models.Appointment{},
		&models.ReminderLog{},
	)
}

func main() {
	cfg, err := config.LoadReminderConfig()
	if err != nil {
		log.Fatalf("Invalid reminder configuration: %v", err)
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("Invalid DEALERSHIP_TIMEZONE %q: %v", cfg.Timezone, err)
	}

	sms := services.NewSMSService(cfg.MaxAttempts, cfg.RetryBase, cfg.RecipientDelay)
	ledger := services.NewGormReminderLedger(config.DB)
	state := services.NewSchedulerState()

	reminderService := services.NewReminderService(
		cfg, loc,
		services.NewGormAppointmentStore(config.DB),
		services.NewGormRecipientStore(config.DB),
		ledger, sms, state,
	)
	reminderService.StartScheduler()
	defer reminderService.StopScheduler()

	reminderController := &controllers.ReminderController{
		Runner: reminderService,
		Ledger: ledger,
	}
	healthController := &controllers.HealthController{
		State:     state,
		Transport: sms,
		Ledger:    ledger,
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r := routes.SetupRouter(reminderController, healthController)
	printRoutes(r)
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
