package main

import (
	"stresscheck-go/internal/config"
	"stresscheck-go/internal/database"
	logger "stresscheck-go/internal/logging"
	"stresscheck-go/internal/models"
	"stresscheck-go/internal/router"
	"stresscheck-go/internal/services"

	"go.uber.org/zap"
)

func main() {
	projectRoot := "."

	// Initialize Logger
	log, err := logger.Init(projectRoot)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Initialize Configuration
	if err := config.Init(projectRoot, log); err != nil {
		log.Fatal("Failed to initialize configuration", zap.Error(err))
	}

	// Initialize Database
	database.Init(log)

	// Load the questionnaire at startup
	questionnaire, err := models.LoadQuestionnaire("config/questions.yaml")
	if err != nil {
		log.Fatal("Failed to load questionnaire", zap.Error(err))
	}

	// Wire services
	notifier := services.NewWebhookNotifier(log)
	submissions := services.NewSubmissionService(log)
	stats := services.NewStatsService(log)
	alerts := services.NewAlertService(log, notifier)
	emails := services.NewEmailService(log)

	// Background work: alert sweeps and reminder emails
	scheduler := services.NewScheduler(log, alerts, emails)
	scheduler.Start()

	// Setup router, passing the logger to it
	r := router.Setup(log, questionnaire, submissions, stats, alerts)

	// Start the Gin server
	port := ":" + config.Conf.Server.Port
	log.Info("Server listening on http://localhost" + port)
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}
