package router

import (
	"net/http"
	"time"

	"stresscheck-go/internal/handlers"
	"stresscheck-go/internal/models"
	"stresscheck-go/internal/services"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func rateLimitExceeded(c *gin.Context, info ratelimit.Info) {
	c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, try again later"})
}

// Setup wires middleware, handlers and routes into a gin engine.
func Setup(log *zap.Logger, questionnaire *models.Questionnaire,
	submissions *services.SubmissionService,
	stats *services.StatsService,
	alerts *services.AlertService) *gin.Engine {

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
	})

	// Brute-force protection on the credential and submission endpoints.
	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 10,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: rateLimitExceeded,
		KeyFunc:      keyFunc,
	})

	authHandler := handlers.NewAuthHandler(log)
	stressCheckHandler := handlers.NewStressCheckHandler(log, questionnaire, submissions)
	dashboardHandler := handlers.NewDashboardHandler(log, stats, alerts)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/register", limiter, authHandler.Register)
		auth.POST("/login", limiter, authHandler.Login)
		auth.GET("/me", AuthRequired(log), authHandler.Me)
	}

	authorized := api.Group("/")
	authorized.Use(AuthRequired(log))
	{
		stressCheck := authorized.Group("/stress-check")
		{
			stressCheck.GET("/questions", stressCheckHandler.Questions)
			stressCheck.POST("/submit", limiter, stressCheckHandler.Submit)
			stressCheck.GET("/history", stressCheckHandler.History)
			stressCheck.GET("/result/:id", stressCheckHandler.Result)
			stressCheck.GET("/draft", stressCheckHandler.GetDraft)
			stressCheck.POST("/draft", stressCheckHandler.SaveDraft)
			stressCheck.DELETE("/draft", stressCheckHandler.DeleteDraft)
			stressCheck.GET("/non-taken", AdminRequired(), stressCheckHandler.NonTaken)
		}

		authorized.POST("/employees", AdminRequired(), authHandler.CreateEmployee)

		dashboard := authorized.Group("/dashboard")
		dashboard.Use(AdminRequired())
		{
			dashboard.GET("/company/:company_id", dashboardHandler.CompanyStats)
			dashboard.GET("/departments", dashboardHandler.Departments)
			dashboard.GET("/alerts", dashboardHandler.Alerts)
			dashboard.POST("/alerts/:alert_id/read", dashboardHandler.MarkAlertRead)
			dashboard.DELETE("/alerts/:alert_id/read", dashboardHandler.MarkAlertUnread)
		}
	}

	return router
}
