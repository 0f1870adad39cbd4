package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	memento "github.com/vargamick/poster-memento-sub005"
	"github.com/vargamick/poster-memento-sub005/pkg/analytics"
	"github.com/vargamick/poster-memento-sub005/pkg/server/dto"
	"github.com/vargamick/poster-memento-sub005/pkg/telemetry"
)

// AnalyticsHandler handles node analytics requests
type AnalyticsHandler struct {
	engine   memento.Engine
	querylog *telemetry.QueryLog
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(engine memento.Engine, querylog *telemetry.QueryLog) *AnalyticsHandler {
	return &AnalyticsHandler{engine: engine, querylog: querylog}
}

// NodeAnalytics handles GET /api/v1/analytics/:entity
func (h *AnalyticsHandler) NodeAnalytics(c *gin.Context) {
	entity := c.Param("entity")

	opts, err := analyticsOptionsFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	start := time.Now()
	result, err := h.engine.NodeAnalytics(c.Request.Context(), entity, opts)
	found := 0
	if result != nil {
		found = len(result.Neighbors)
	}
	h.querylog.Record("analytics", "", entity, time.Since(start), found, err == nil)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AnalyticsResponse{
		Entity:    entity,
		Analytics: result,
	})
}

func analyticsOptionsFromQuery(c *gin.Context) (*analytics.Options, error) {
	opts := &analytics.Options{}

	if v := c.Query("neighborDepth"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, &badQueryParamError{param: "neighborDepth", value: v}
		}
		opts.NeighborDepth = n
	}
	if v := c.Query("maxNeighbors"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, &badQueryParamError{param: "maxNeighbors", value: v}
		}
		opts.MaxNeighbors = n
	}
	opts.IncludeCentrality = boolQuery(c, "includeCentrality")
	opts.IncludePathMetrics = boolQuery(c, "includePathMetrics")
	opts.IncludeClustering = boolQuery(c, "includeClustering")
	opts.IncludeCommunities = boolQuery(c, "includeCommunities")
	return opts, nil
}

func boolQuery(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(c.DefaultQuery(name, "false"))
	return err == nil && v
}

type badQueryParamError struct {
	param string
	value string
}

func (e *badQueryParamError) Error() string {
	return "invalid query parameter " + e.param + ": " + e.value
}
