package server

import (
	"net/http"
	"time"

	"gemini2api/internal/core"
	"gemini2api/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (s *Server) generateText(c *gin.Context) {
	startTime := time.Now()

	defer withPanicRecovery(c, s.metricsService, startTime, s.config.Logger)()
	defer trackPerformance(s.metricsService, startTime)()

	var request core.GenerateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		recordRequestResult(s.metricsService, false, startTime, "", "")
		respondWithError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	s.config.Logger.Info("Generate request: prompt=%d chars (~%d tokens), model=%q",
		len(request.Prompt), util.EstimateTokenCount(request.Prompt), request.Model)

	result, err := s.generateService.Generate(c.Request.Context(), request)
	if err != nil {
		recordRequestResult(s.metricsService, false, startTime, request.Model, "")
		s.config.Logger.Error("Generation failed: %v", err)
		respondWithError(c, core.HTTPStatusFor(err), core.ClientMessageFor(err))
		return
	}

	recordRequestResult(s.metricsService, true, startTime, result.Model, "")

	c.JSON(http.StatusOK, core.GenerateResponse{
		OK:        true,
		ID:        core.GenerationIDPrefix + uuid.New().String(),
		ModelUsed: result.Model,
		Output:    result.Text,
	})
}

func (s *Server) listModels(c *gin.Context) {
	models, err := s.generateService.ListModels(c.Request.Context())
	if err != nil {
		s.config.Logger.Error("Model listing failed: %v", err)
		respondWithError(c, core.HTTPStatusFor(err), core.ClientMessageFor(err))
		return
	}

	if models == nil {
		models = []core.Model{}
	}

	c.JSON(http.StatusOK, core.ModelList{OK: true, Models: models})
}
