// Package server exposes the disease analysis pipeline over HTTP.
package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/agenthands/hallmarks/internal/cache"
	"github.com/agenthands/hallmarks/internal/core"
	"github.com/agenthands/hallmarks/internal/ontology"
)

type Server struct {
	Analyzer *core.Analyzer
	Cache    *cache.Store
}

func NewServer(analyzer *core.Analyzer, store *cache.Store) *Server {
	return &Server{Analyzer: analyzer, Cache: store}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.POST("/analyze", s.Analyze)
	r.POST("/compare", s.Compare)
	r.GET("/diseases", s.Diseases)
	r.GET("/cache/stats", s.CacheStats)
	r.POST("/cache/clear-expired", s.ClearExpired)

	return r
}

type AnalyzeRequest struct {
	Disease string `json:"disease"`
}

func (s *Server) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Disease == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: disease name required"})
		return
	}

	annotation, err := s.Analyzer.Analyze(c.Request.Context(), req.Disease)
	if err != nil {
		if errors.Is(err, ontology.ErrNotFound) || errors.Is(err, core.ErrNoTargets) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.WithError(err).WithField("disease", req.Disease).Error("analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Analysis failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"annotation":    annotation,
		"top_hallmarks": annotation.TopHallmarks(3),
	})
}

type CompareRequest struct {
	Diseases []string `json:"diseases"`
}

func (s *Server) Compare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Diseases) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: at least two disease names required"})
		return
	}

	results, err := s.Analyzer.Compare(c.Request.Context(), req.Diseases)
	if err != nil {
		log.WithError(err).Error("comparison failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Comparison failed"})
		return
	}

	scores := map[string]map[string]float64{}
	for name, annotation := range results {
		perHallmark := map[string]float64{}
		for hallmark, hs := range annotation.HallmarkScores {
			perHallmark[hallmark] = hs.TotalScore
		}
		scores[name] = perHallmark
	}

	c.JSON(http.StatusOK, gin.H{
		"annotations":     results,
		"hallmark_scores": scores,
	})
}

// Diseases lists stored analyses, filtered either by a hallmark's score or
// by aggregate score.
func (s *Server) Diseases(c *gin.Context) {
	minScore := 0.0
	if v := c.Query("min_score"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid min_score"})
			return
		}
		minScore = parsed
	}

	if hallmark := c.Query("hallmark"); hallmark != "" {
		c.JSON(http.StatusOK, gin.H{"diseases": s.Analyzer.Store().ByHallmark(hallmark, minScore)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"diseases": s.Analyzer.Store().ByTotalScore(minScore)})
}

func (s *Server) CacheStats(c *gin.Context) {
	stats, err := s.Cache.AnalyzeStats()
	if err != nil {
		log.WithError(err).Error("cache stats failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze cache"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) ClearExpired(c *gin.Context) {
	removed, err := s.Cache.ClearExpired()
	if err != nil {
		log.WithError(err).Error("clearing expired cache entries failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear expired entries"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
