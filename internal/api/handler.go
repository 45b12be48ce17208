// Package api exposes the analyses and recorded runs over JSON.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"choicelab/adapters/report"
	"choicelab/app"
	"choicelab/domain/core"
	"choicelab/internal"
	apperrors "choicelab/internal/errors"
	"choicelab/ports"

	"github.com/gin-gonic/gin"
)

// Handler serves the analysis endpoints
type Handler struct {
	strategy     *app.StrategyService
	reactionTime *app.ReactionTimeService
	recorder     ports.RunRecorder
	maxUpload    int64
	log          *internal.Logger
}

// NewHandler creates the handler; maxUploadMB bounds each request body
func NewHandler(strategy *app.StrategyService, reactionTime *app.ReactionTimeService, recorder ports.RunRecorder, maxUploadMB int64, log *internal.Logger) *Handler {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Handler{
		strategy:     strategy,
		reactionTime: reactionTime,
		recorder:     recorder,
		maxUpload:    maxUploadMB << 20,
		log:          log,
	}
}

// Register mounts the routes on r
func (h *Handler) Register(r *gin.Engine) {
	r.MaxMultipartMemory = h.maxUpload
	r.GET("/healthz", h.health)

	v1 := r.Group("/api/v1")
	v1.Use(h.limitBody)
	v1.POST("/strategy", h.analyzeStrategy)
	v1.POST("/reaction-times", h.analyzeReactionTimes)
	v1.GET("/runs", h.listRuns)
	v1.GET("/runs/:id", h.getRun)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	c.Next()
}

func (h *Handler) analyzeStrategy(c *gin.Context) {
	a, b, ok := h.groupInputs(c)
	if !ok {
		return
	}
	rep, err := h.strategy.Analyze(c.Request.Context(), a, b)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *Handler) analyzeReactionTimes(c *gin.Context) {
	a, b, ok := h.groupInputs(c)
	if !ok {
		return
	}
	rep, err := h.reactionTime.Analyze(c.Request.Context(), a, b)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// groupInputs reads the group_a / group_b uploads and their optional
// source_* and label_* fields
func (h *Handler) groupInputs(c *gin.Context) (app.GroupInput, app.GroupInput, bool) {
	var inputs [2]app.GroupInput
	for i, g := range []struct{ file, source, label, defLabel string }{
		{"group_a", "source_a", "label_a", "Group A"},
		{"group_b", "source_b", "label_b", "Group B"},
	} {
		fh, err := c.FormFile(g.file)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				h.fail(c, apperrors.InvalidInput(fmt.Sprintf("request body exceeds %d MB", h.maxUpload>>20)))
			} else {
				h.fail(c, apperrors.InvalidInput("multipart file "+g.file+" is required"))
			}
			return app.GroupInput{}, app.GroupInput{}, false
		}
		f, err := fh.Open()
		if err != nil {
			h.fail(c, apperrors.Wrap(err, "open upload "+g.file))
			return app.GroupInput{}, app.GroupInput{}, false
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			h.fail(c, apperrors.Wrap(err, "read upload "+g.file))
			return app.GroupInput{}, app.GroupInput{}, false
		}

		inputs[i] = app.GroupInput{
			Label:   c.DefaultPostForm(g.label, g.defLabel),
			Path:    fh.Filename,
			Source:  c.DefaultPostForm(g.source, "original"),
			Content: content,
		}
	}
	return inputs[0], inputs[1], true
}

func (h *Handler) listRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		h.fail(c, apperrors.InvalidInput("limit must be a positive integer"))
		return
	}
	runs, err := h.recorder.ListRuns(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, apperrors.DatabaseError("list runs", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// getRun returns the stored record, or its markdown report with ?format=markdown
func (h *Handler) getRun(c *gin.Context) {
	id, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		h.fail(c, apperrors.InvalidInput(err.Error()))
		return
	}
	rec, err := h.recorder.GetRun(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	if c.Query("format") == "markdown" {
		md, err := report.ForRecord(rec)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError && !isCanceled(err) {
		h.log.Error("[API] %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "code": apperrors.GetCode(err)})
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
