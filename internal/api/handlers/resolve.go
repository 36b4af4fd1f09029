package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/codyseavey/card-checklist/internal/catalog"
	"github.com/codyseavey/card-checklist/internal/metrics"
	"github.com/codyseavey/card-checklist/internal/services"
)

type ResolveRequest struct {
	Label  string `json:"label" binding:"required"`
	Season string `json:"season"`
}

type ResolveResponse struct {
	Attributes services.ResolvedAttributes `json:"attributes"`
	Issues     []services.Issue            `json:"issues"`
	Cached     bool                        `json:"cached"`
}

type CatalogStatsResponse struct {
	Counts           catalog.Counts `json:"counts"`
	DefaultVariantID int            `json:"default_variant_id"`
	HasBaseVariant   bool           `json:"has_base_variant"`
}

// ResolveHandler serves single-label resolution against the loaded catalog.
type ResolveHandler struct {
	catalog  *catalog.Catalog
	resolver *services.AttributeResolver
	cache    *lru.Cache[string, ResolveResponse] // nil when caching is off
	logger   zerolog.Logger
}

// NewResolveHandler creates the handler. cacheSize 0 disables the result cache.
func NewResolveHandler(c *catalog.Catalog, cacheSize int, logger zerolog.Logger) (*ResolveHandler, error) {
	h := &ResolveHandler{
		catalog:  c,
		resolver: services.NewAttributeResolver(c),
		logger:   logger,
	}
	if cacheSize > 0 {
		cache, err := lru.New[string, ResolveResponse](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create resolve cache: %w", err)
		}
		h.cache = cache
	}
	return h, nil
}

func (h *ResolveHandler) catalogReady() bool {
	return h.catalog != nil && !h.catalog.IsEmpty()
}

func (h *ResolveHandler) Resolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.catalogReady() {
		respondError(c, services.ErrCatalogNotBuilt)
		return
	}

	key := req.Label + "|" + req.Season
	if h.cache != nil {
		if resp, ok := h.cache.Get(key); ok {
			metrics.ResolveCacheHits.Inc()
			resp.Cached = true
			c.JSON(http.StatusOK, resp)
			return
		}
		metrics.ResolveCacheMisses.Inc()
	}

	log := services.NewIssueLog(h.logger)
	attrs := h.resolver.Resolve(req.Label, req.Season, log)
	metrics.ResolveRequestsTotal.WithLabelValues(string(attrs.Confidence)).Inc()

	resp := ResolveResponse{Attributes: attrs, Issues: log.Issues()}
	if resp.Issues == nil {
		resp.Issues = []services.Issue{}
	}
	if h.cache != nil {
		h.cache.Add(key, resp)
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ResolveHandler) GetCatalogStats(c *gin.Context) {
	if h.catalog == nil {
		respondError(c, services.ErrCatalogNotBuilt)
		return
	}

	c.JSON(http.StatusOK, CatalogStatsResponse{
		Counts:           h.catalog.Counts(),
		DefaultVariantID: h.catalog.DefaultVariantID(),
		HasBaseVariant:   h.catalog.HasBaseVariant(),
	})
}
