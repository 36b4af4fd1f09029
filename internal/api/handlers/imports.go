package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/card-checklist/internal/models"
	"github.com/codyseavey/card-checklist/internal/services"
)

// Checklist pages are a few hundred KB; anything far beyond is not a checklist.
const maxUploadBytes = 32 << 20

type ImportResponse struct {
	Run         *models.ImportRun    `json:"run"`
	NeedsReview []models.ReviewEntry `json:"needs_review"`
	Issues      []services.Issue     `json:"issues"`
}

type ImportHandler struct {
	importService *services.ImportService
	script        services.ScriptOptions
}

// NewImportHandler creates the handler. script supplies the database and
// collection names of generated scripts; GeneratedAt is set per request.
func NewImportHandler(importService *services.ImportService, script services.ScriptOptions) *ImportHandler {
	return &ImportHandler{importService: importService, script: script}
}

// CreateImport runs an uploaded checklist page, sent either as the raw request
// body or as the multipart field "file". format=sql returns the import script
// and format=review the review report instead of JSON.
func (h *ImportHandler) CreateImport(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	source := c.Query("source")
	var body io.Reader = c.Request.Body

	if file, header, err := c.Request.FormFile("file"); err == nil {
		defer file.Close()
		body = file
		if source == "" {
			source = header.Filename
		}
	} else if errors.Is(err, http.ErrMissingFile) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart upload without a file field"})
		return
	} else if !errors.Is(err, http.ErrNotMultipart) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid upload: " + err.Error()})
		return
	}
	if source == "" {
		source = "upload"
	}

	run, result, err := h.importService.ImportChecklist(c.Request.Context(), source, body)
	if err != nil {
		switch {
		case run == nil:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrCatalogNotBuilt):
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "run": run, "issues": result.Issues})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "run": run})
		}
		return
	}

	switch c.Query("format") {
	case "sql":
		h.writeScript(c, result.Accepted)
	case "review":
		h.writeReview(c, result.NeedsReview, result.Issues)
	default:
		c.JSON(http.StatusCreated, ImportResponse{
			Run:         run,
			NeedsReview: nonNilEntries(result.NeedsReview),
			Issues:      nonNilIssues(result.Issues),
		})
	}
}

func (h *ImportHandler) ListImports(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	runs, err := h.importService.ListRuns(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	if runs == nil {
		runs = []models.ImportRun{}
	}
	c.JSON(http.StatusOK, models.ImportRunListResponse{Runs: runs, TotalCount: len(runs)})
}

func (h *ImportHandler) GetImport(c *gin.Context) {
	detail, err := h.importService.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// GetReview returns the entries a run set aside. format=text renders the
// review report.
func (h *ImportHandler) GetReview(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	entries, err := h.importService.ReviewEntries(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("format") == "text" {
		issues, err := h.importService.RunIssues(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		h.writeReview(c, entries, issues)
		return
	}

	c.JSON(http.StatusOK, models.ReviewListResponse{
		ImportRunID: id,
		Entries:     nonNilEntries(entries),
		TotalCount:  len(entries),
	})
}

// GetScript regenerates the import script of a persisted run. upsert=true
// overrides the configured statement style.
func (h *ImportHandler) GetScript(c *gin.Context) {
	cards, err := h.importService.CardsForRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.writeScript(c, cards)
}

func (h *ImportHandler) writeScript(c *gin.Context, cards []models.CardRecord) {
	opts := h.script
	opts.GeneratedAt = time.Now()
	if v := c.Query("upsert"); v != "" {
		upsert, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "upsert must be a boolean"})
			return
		}
		opts.Upsert = upsert
	}

	var buf bytes.Buffer
	if err := services.WriteScript(&buf, cards, opts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/sql; charset=utf-8", buf.Bytes())
}

func (h *ImportHandler) writeReview(c *gin.Context, entries []models.ReviewEntry, issues []services.Issue) {
	var buf bytes.Buffer
	if err := services.WriteReviewReport(&buf, entries, issues, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}

func nonNilEntries(entries []models.ReviewEntry) []models.ReviewEntry {
	if entries == nil {
		return []models.ReviewEntry{}
	}
	return entries
}

func nonNilIssues(issues []services.Issue) []services.Issue {
	if issues == nil {
		return []services.Issue{}
	}
	return issues
}
