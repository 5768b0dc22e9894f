package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tripwisego/feature-board/backend/internal/database"
	"github.com/tripwisego/feature-board/backend/internal/handlers"
	"github.com/tripwisego/feature-board/backend/internal/store/postgres"
	"github.com/tripwisego/feature-board/backend/internal/voting"
)

type Server struct {
	db      database.Service
	handler *handlers.Handler
}

// New wires a Server from an already-built handler. Used by tests to
// run the router against alternative storage.
func New(db database.Service, handler *handlers.Handler) *Server {
	return &Server{db: db, handler: handler}
}

// NewServer creates and configures a new server
func NewServer() *http.Server {
	// Initialize database
	db := database.New()
	gormDB := db.GetDB()

	// Voting engine on the Postgres-backed store
	engine := voting.NewEngine(postgres.NewStore(gormDB))

	// Create unified handler
	handler := handlers.NewHandler(gormDB, engine)

	// Create server instance
	newServer := &Server{
		db:      db,
		handler: handler,
	}

	// Configure Gin router
	router := newServer.RegisterRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // local dev fallback
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("🚀 Feature request server starting on port %s\n", port)
	fmt.Println("📝 Press Ctrl+C to stop the server")

	return server
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.Default()

	// CORS configuration: the board is served cross-origin, so every
	// response allows any origin; the cors middleware answers OPTIONS
	// preflights itself.
	r.Use(cors.New(cors.Config{
		AllowOrigins:              []string{"*"},
		AllowMethods:              []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:              []string{"Content-Type", "Authorization", "Cache-Control"},
		ExposeHeaders:             []string{"Content-Type"},
		MaxAge:                    12 * 3600,
		OptionsResponseStatusCode: http.StatusOK,
	}))

	// API routes
	api := r.Group("/api")
	{
		// Health check endpoint
		api.GET("/health", s.healthHandler)

		// Feature request routes
		api.POST("/upload-feature", s.handler.Feature.UploadFeature)
		api.GET("/features", s.handler.Feature.GetFeatures)
		api.GET("/features/:id", s.handler.Feature.GetFeature)
		api.PUT("/features/:id", s.handler.Feature.UpdateFeature)
		api.DELETE("/features/:id", s.handler.Feature.DeleteFeature)

		// Attachment routes
		api.GET("/features/:id/files", s.handler.File.GetFeatureFiles)
		api.POST("/features/:id/files", s.handler.File.UploadFeatureFile)

		// Voting routes
		api.POST("/vote", s.handler.Vote.Vote)
		api.DELETE("/vote", s.handler.Vote.RetractVote)
		api.GET("/users/:userId/votes", s.handler.Vote.GetUserVotes)
		api.GET("/statistics", s.handler.Vote.GetStatistics)
	}

	return r
}

func (s *Server) healthHandler(c *gin.Context) {
	resp := gin.H{
		"status":    "OK",
		"message":   "Feature request API is running",
		"timestamp": time.Now().UTC(),
	}
	if s.db != nil {
		resp["database"] = s.db.Health()
	}
	c.JSON(http.StatusOK, resp)
}
