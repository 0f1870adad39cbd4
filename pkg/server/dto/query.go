// Package dto defines the request and response shapes of the HTTP API.
package dto

import (
	"github.com/vargamick/poster-memento-sub005/pkg/paths"
	"github.com/vargamick/poster-memento-sub005/pkg/search"
	"github.com/vargamick/poster-memento-sub005/pkg/types"
)

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Query    string               `json:"query" binding:"required"`
	Strategy string               `json:"strategy,omitempty"`
	Options  *types.SearchOptions `json:"options,omitempty"`
}

// SearchResponse wraps the ranked results of one search.
type SearchResponse struct {
	Query    string               `json:"query"`
	Strategy string               `json:"strategy"`
	Count    int                  `json:"count"`
	Results  []types.ScoredEntity `json:"results"`
}

// PathRequest is the body of POST /api/v1/paths.
type PathRequest struct {
	From    string         `json:"from" binding:"required"`
	To      string         `json:"to" binding:"required"`
	Options *paths.Options `json:"options,omitempty"`
}

// PathResponse carries the discovered paths and optional analysis.
type PathResponse struct {
	From     string              `json:"from"`
	To       string              `json:"to"`
	Count    int                 `json:"count"`
	Paths    []*types.PathResult `json:"paths"`
	Analysis *types.PathAnalysis `json:"analysis,omitempty"`
}

// AnalyticsResponse wraps the analytics bundle for one entity.
type AnalyticsResponse struct {
	Entity    string               `json:"entity"`
	Analytics *types.NodeAnalytics `json:"analytics"`
}

// StrategiesResponse lists the registered search strategies.
type StrategiesResponse struct {
	Default    string   `json:"default"`
	Strategies []string `json:"strategies"`
}

// HybridConfigResponse reports the active fusion weights.
type HybridConfigResponse struct {
	GraphWeight  float64 `json:"graphWeight"`
	VectorWeight float64 `json:"vectorWeight"`
}

// NewHybridConfigResponse converts the internal config.
func NewHybridConfigResponse(cfg search.HybridConfig) HybridConfigResponse {
	return HybridConfigResponse{
		GraphWeight:  cfg.GraphWeight,
		VectorWeight: cfg.VectorWeight,
	}
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
