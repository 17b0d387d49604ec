package main

import (
	"log"
	"net/http"

	"github.com/bdvbs4e/backtriviapp/internal/config"
	"github.com/bdvbs4e/backtriviapp/internal/database"
	"github.com/bdvbs4e/backtriviapp/internal/game"
	"github.com/bdvbs4e/backtriviapp/internal/handlers"
	"github.com/bdvbs4e/backtriviapp/internal/middleware"
	"github.com/bdvbs4e/backtriviapp/internal/services"
	"github.com/bdvbs4e/backtriviapp/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Elimination Quiz API
// @version         1.0
// @description     Live multiplayer elimination-quiz backend: rooms, rounds and results over WebSocket, CRUD over HTTP
// @host            localhost:8080
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter "Bearer {token}"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	cfg := config.Load()

	db := database.Connect(cfg)
	database.AutoMigrate(db)

	hub := ws.NewHub()

	authService := services.NewAuthService(db, cfg.JWTSecret)
	questionService := services.NewQuestionService(db)
	resultService := services.NewPlayerResultService(db)
	recordService := services.NewGameRecordService(db)
	statsService := services.NewGameStatsService(db)

	registry := game.NewRegistry(cfg.RequiredPlayers)
	if records, err := recordService.ListActive(); err != nil {
		log.Printf("could not restore rooms: %v", err)
	} else {
		registry.Restore(records)
		log.Printf("restored %d rooms from database", len(records))
	}

	engine := game.NewEngine(registry, questionService, resultService, recordService, statsService, hub, cfg.QuestionCount)
	gameHandler := game.NewHandler(registry, engine)

	userHandler := handlers.NewUserHandler(authService)
	questionHandler := handlers.NewQuestionHandler(questionService)
	gameRecordHandler := handlers.NewGameHandler(recordService)
	resultHandler := handlers.NewPlayerResultHandler(resultService)
	dashboardHandler := handlers.NewDashboardHandler(statsService)
	socketHandler := handlers.NewSocketHandler(hub, gameHandler)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "API OK") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/ws/play", socketHandler.HandlePlaySocket)
	r.GET("/ws/dashboard", socketHandler.HandleDashboardSocket)

	api := r.Group("/api")
	{
		users := api.Group("/users")
		{
			users.GET("", userHandler.ListUsers)
			users.GET("/:id", userHandler.GetUser)
			users.POST("", userHandler.Register)
			users.POST("/login", userHandler.Login)
		}

		api.GET("/questions", questionHandler.ListQuestions)
		api.GET("/questions/:id", questionHandler.GetQuestion)
		questions := api.Group("/questions")
		questions.Use(middleware.JWTAuth(authService))
		{
			questions.POST("", questionHandler.CreateQuestion)
			questions.PUT("/:id", questionHandler.UpdateQuestion)
			questions.DELETE("/:id", questionHandler.DeleteQuestion)
		}

		games := api.Group("/games")
		{
			games.GET("", gameRecordHandler.ListGames)
			games.GET("/stats", gameRecordHandler.GetGameStats)
			games.GET("/:roomId", gameRecordHandler.GetGame)
		}

		results := api.Group("/player-results")
		{
			results.GET("/room/:roomId", resultHandler.GetResultsByRoom)
			results.POST("/room/:roomId", resultHandler.UpsertResult)
			results.PUT("/room/:roomId/player/:playerId/elimination", resultHandler.UpdateElimination)
			results.PUT("/room/:roomId/player/:playerId/score", resultHandler.UpdateScore)
			results.GET("/player/:playerId/stats", resultHandler.GetPlayerStats)
		}

		api.GET("/dashboard/stats", dashboardHandler.GetStats)
	}

	log.Printf("server starting on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
