package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/SOLSKEY/bbb-auto-sales-dms-sub003/config"
	"github.com/SOLSKEY/bbb-auto-sales-dms-sub003/controllers"
	"github.com/SOLSKEY/bbb-auto-sales-dms-sub003/utils"
)

func SetupRouter(reminders *controllers.ReminderController, health *controllers.HealthController) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"https://dms.bbbautosales.com",
			"http://localhost:3000",
		},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Api-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	r.GET("/health", health.Health)

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		rem := api.Group("/reminders")
		{
			rem.POST("/run/:kind", reminders.RunNow)
			rem.GET("/logs", reminders.GetLogs)
			rem.GET("/stats", health.GetStats)
		}
	}

	return r
}
