package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	memento "github.com/vargamick/poster-memento-sub005"
	"github.com/vargamick/poster-memento-sub005/pkg/paths"
	"github.com/vargamick/poster-memento-sub005/pkg/server/dto"
	"github.com/vargamick/poster-memento-sub005/pkg/telemetry"
)

// PathHandler handles path discovery requests
type PathHandler struct {
	engine   memento.Engine
	querylog *telemetry.QueryLog
}

// NewPathHandler creates a new path handler
func NewPathHandler(engine memento.Engine, querylog *telemetry.QueryLog) *PathHandler {
	return &PathHandler{engine: engine, querylog: querylog}
}

// FindPaths handles POST /api/v1/paths
func (h *PathHandler) FindPaths(c *gin.Context) {
	var req dto.PathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	algorithm := paths.AlgorithmBFS
	if req.Options != nil && req.Options.Algorithm != "" {
		algorithm = req.Options.Algorithm
	}

	start := time.Now()
	result, err := h.engine.FindPaths(c.Request.Context(), req.From, req.To, req.Options)
	found := 0
	if result != nil {
		found = len(result.Paths)
	}
	h.querylog.Record("paths", algorithm, req.From+" -> "+req.To, time.Since(start), found, err == nil)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PathResponse{
		From:     req.From,
		To:       req.To,
		Count:    len(result.Paths),
		Paths:    result.Paths,
		Analysis: result.Analysis,
	})
}
