package server

import (
	"gemini2api/internal/web"

	"github.com/gin-gonic/gin"
)

func (s *Server) setupRoutes() {
	gin.SetMode(s.ginMode)
	s.router = gin.New()

	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(s.corsMiddleware())
	s.router.Use(s.maxBodySizeMiddleware())
	s.router.Use(s.rateLimitMiddleware())

	// Public routes (no auth)
	s.router.GET("/", web.ShowIndexPage)
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/api/stats", s.getStatsData)

	// API routes (auth enforced only when client keys are configured)
	api := s.router.Group("/api")
	api.Use(s.authenticateClient)
	{
		api.POST("/generate", s.generateText)
		api.GET("/list-models", s.listModels)
	}
}
