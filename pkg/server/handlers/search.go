package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	memento "github.com/vargamick/poster-memento-sub005"
	"github.com/vargamick/poster-memento-sub005/pkg/search"
	"github.com/vargamick/poster-memento-sub005/pkg/server/dto"
	"github.com/vargamick/poster-memento-sub005/pkg/telemetry"
	"github.com/vargamick/poster-memento-sub005/pkg/types"
)

// SearchHandler handles search requests
type SearchHandler struct {
	engine   memento.Engine
	querylog *telemetry.QueryLog
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(engine memento.Engine, querylog *telemetry.QueryLog) *SearchHandler {
	return &SearchHandler{engine: engine, querylog: querylog}
}

// Search handles POST /api/v1/search
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	var (
		results []types.ScoredEntity
		err     error
	)
	start := time.Now()
	strategy := req.Strategy
	if strategy == "" {
		strategy = h.engine.DefaultStrategy()
		results, err = h.engine.Search(c.Request.Context(), req.Query, req.Options)
	} else {
		results, err = h.engine.SearchWithStrategy(c.Request.Context(), req.Query, strategy, req.Options)
		if !h.engine.IsStrategyAvailable(strategy) {
			// the service fell back to the default; report what actually ran
			strategy = h.engine.DefaultStrategy()
		}
	}
	h.querylog.Record("search", strategy, req.Query, time.Since(start), len(results), err == nil)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SearchResponse{
		Query:    req.Query,
		Strategy: strategy,
		Count:    len(results),
		Results:  results,
	})
}

// Strategies handles GET /api/v1/search/strategies
func (h *SearchHandler) Strategies(c *gin.Context) {
	c.JSON(http.StatusOK, dto.StrategiesResponse{
		Default:    h.engine.DefaultStrategy(),
		Strategies: h.engine.AvailableStrategies(),
	})
}

// GetHybridConfig handles GET /api/v1/search/hybrid-config
func (h *SearchHandler) GetHybridConfig(c *gin.Context) {
	cfg, ok := h.engine.HybridConfig()
	if !ok {
		respondError(c, &types.StrategyUnavailableError{Name: search.StrategyHybrid})
		return
	}
	c.JSON(http.StatusOK, dto.NewHybridConfigResponse(cfg))
}

// UpdateHybridConfig handles PUT /api/v1/search/hybrid-config
func (h *SearchHandler) UpdateHybridConfig(c *gin.Context) {
	var patch search.HybridConfigPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	cfg, err := h.engine.UpdateHybridConfig(patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewHybridConfigResponse(cfg))
}
