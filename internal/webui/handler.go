// Package webui exposes the task entry points and stored drafts over
// HTTP for the dashboard.
package webui

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"outreach/internal/content"
	"outreach/pkg/logging"
)

type TaskRunner interface {
	GenerateAndPublishNow(ctx context.Context, topic string) string
	PlanWeek(ctx context.Context, prompt string) string
	DeleteDraft(ctx context.Context, platform content.Platform, id int64) string
	ShowWeek(ctx context.Context) string
}

type DraftLister interface {
	ListLinkedIn(ctx context.Context) ([]content.LinkedInPost, error)
	ListTwitter(ctx context.Context) ([]content.TwitterPost, error)
	ListYouTube(ctx context.Context) ([]content.YouTubePost, error)
}

type Handler struct {
	Tasks  TaskRunner
	Drafts DraftLister
	Logger logging.Logger
}

func NewHandler(tasks TaskRunner, drafts DraftLister, logger logging.Logger) *Handler {
	return &Handler{Tasks: tasks, Drafts: drafts, Logger: logger}
}

// Register mounts the API under /api/v1.
func (h *Handler) Register(router gin.IRouter) {
	api := router.Group("/api/v1")
	api.POST("/publish", h.publishNow)
	api.POST("/plan", h.planWeek)
	api.GET("/week", h.showWeek)
	api.GET("/drafts/:platform", h.listDrafts)
	api.DELETE("/drafts/:platform/:id", h.deleteDraft)
}

type publishRequest struct {
	Topic string `json:"topic"`
}

func (h *Handler) publishNow(c *gin.Context) {
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Topic == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "topic is required"})
		return
	}
	status := h.Tasks.GenerateAndPublishNow(c.Request.Context(), req.Topic)
	c.JSON(http.StatusOK, gin.H{"status": status})
}

type planRequest struct {
	Prompt string `json:"prompt"`
}

func (h *Handler) planWeek(c *gin.Context) {
	var req planRequest
	// An empty body is fine: the planner has a default prompt.
	_ = c.ShouldBindJSON(&req)
	status := h.Tasks.PlanWeek(c.Request.Context(), req.Prompt)
	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (h *Handler) showWeek(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": h.Tasks.ShowWeek(c.Request.Context())})
}

func (h *Handler) listDrafts(c *gin.Context) {
	ctx := c.Request.Context()
	switch content.Platform(c.Param("platform")) {
	case content.PlatformLinkedIn:
		posts, err := h.Drafts.ListLinkedIn(ctx)
		h.respondList(c, posts, err)
	case content.PlatformTwitter:
		posts, err := h.Drafts.ListTwitter(ctx)
		h.respondList(c, posts, err)
	case content.PlatformYouTube:
		posts, err := h.Drafts.ListYouTube(ctx)
		h.respondList(c, posts, err)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown platform"})
	}
}

func (h *Handler) respondList(c *gin.Context, posts any, err error) {
	if err != nil {
		h.Logger.WithError(err).Error("Failed to list drafts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list drafts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"drafts": posts})
}

func (h *Handler) deleteDraft(c *gin.Context) {
	platform := content.Platform(c.Param("platform"))
	switch platform {
	case content.PlatformLinkedIn, content.PlatformTwitter, content.PlatformYouTube:
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown platform"})
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid draft id"})
		return
	}
	status := h.Tasks.DeleteDraft(c.Request.Context(), platform, id)
	c.JSON(http.StatusOK, gin.H{"status": status})
}
