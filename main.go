package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"muniboard-be/config"
	"muniboard-be/controllers"
	"muniboard-be/middlewares"
	"muniboard-be/routes"
	"muniboard-be/session"
	"muniboard-be/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	data := store.New()
	if err := data.Load(cfg.DataFile); err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	log.Println("Dataset loaded successfully!")

	// sessions
	var sessions session.Store
	redisClient := config.ConnectRedis(cfg)
	if redisClient != nil {
		sessions = session.NewRedis(redisClient)
	} else {
		sessions = session.NewMemory()
	}

	// repositories: in-memory snapshot by default, MongoDB when configured
	var (
		issueRepo      store.IssueRepository      = data.Issues()
		userRepo       store.UserRepository       = data.Users()
		contractorRepo store.ContractorRepository = data.Contractors()
	)
	if db := config.ConnectMongo(cfg); db != nil {
		snapshot, err := data.Snapshot()
		if err != nil {
			log.Fatalf("Failed to read snapshot: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := store.SeedMongo(ctx, db, snapshot); err != nil {
			cancel()
			log.Fatalf("Failed to seed MongoDB: %v", err)
		}
		cancel()
		issueRepo = store.NewMongoIssueRepository(db)
		userRepo = store.NewMongoUserRepository(db)
		contractorRepo = store.NewMongoContractorRepository(db)
	}

	authMW := middlewares.AuthMiddleware(cfg.JWTSecret, sessions)
	rateMW := middlewares.IssueRateLimiter(redisClient, cfg.IssueLimit)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Origin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	auth := &controllers.AuthController{Users: userRepo, Data: data, Sessions: sessions, Cfg: cfg}
	issues := &controllers.IssueController{Issues: issueRepo, Users: userRepo, Contractors: contractorRepo, Data: data}
	users := &controllers.UserController{Users: userRepo, Data: data}
	contractors := &controllers.ContractorController{Users: userRepo, Contractors: contractorRepo, Data: data}
	dashboard := &controllers.DashboardController{Issues: issueRepo, Users: userRepo, Data: data}

	routes.AuthRoutes(r, auth, authMW)
	routes.IssueRoutes(r, issues, authMW, rateMW)
	routes.UserRoutes(r, users, contractors, authMW)
	routes.DashboardRoutes(r, dashboard, authMW)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
