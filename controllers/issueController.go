package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vishwaguru-be/intake"
	"vishwaguru-be/store"
)

const (
	defaultPageSize = 100
	maxPageSize     = 100
	recentCount     = 10
)

// IssueController serves the issue endpoints
type IssueController struct {
	pipeline *intake.Pipeline
	store    store.Store
	log      *zap.Logger
}

// NewIssueController builds the controller
func NewIssueController(pipeline *intake.Pipeline, st store.Store, log *zap.Logger) *IssueController {
	return &IssueController{pipeline: pipeline, store: st, log: log.Named("issues")}
}

// CreateIssue handles a multipart issue report
func (ic *IssueController) CreateIssue(c *gin.Context) {
	upload, err := readUpload(c, "image", "file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		uploadFailed(c, err)
		return
	}

	sub := intake.Submission{
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		Source:      c.DefaultPostForm("source", "web"),
	}
	if email := strings.TrimSpace(c.PostForm("user_email")); email != "" {
		sub.UserEmail = &email
	}
	if upload != nil {
		sub.ImageName = upload.Name
		sub.Image = upload.Data
		sub.ImageType = upload.ContentType
	}

	result, err := ic.pipeline.Submit(c.Request.Context(), sub)
	switch {
	case errors.Is(err, intake.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create issue"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"issue_id":    result.IssueID,
		"message":     "Issue reported successfully",
		"ai_analysis": result.Analysis,
		"action_plan": result.ActionPlan,
	})
}

// GetIssues lists issues with skip/limit pagination
func (ic *IssueController) GetIssues(c *gin.Context) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "skip must be a non-negative integer"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 || limit > maxPageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
		return
	}

	issues, err := ic.store.List(c.Request.Context(), skip, limit)
	if err != nil {
		ic.log.Error("failed to list issues", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}
	c.JSON(http.StatusOK, issues)
}

// GetRecentIssues returns the newest issues first
func (ic *IssueController) GetRecentIssues(c *gin.Context) {
	issues, err := ic.store.Recent(c.Request.Context(), recentCount)
	if err != nil {
		ic.log.Error("failed to list recent issues", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}
	c.JSON(http.StatusOK, issues)
}

// GetIssue returns a single issue
func (ic *IssueController) GetIssue(c *gin.Context) {
	id, ok := issueID(c)
	if !ok {
		return
	}

	issue, err := ic.store.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			ic.log.Error("failed to get issue", zap.Uint("issue_id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}
	c.JSON(http.StatusOK, issue)
}

// UpvoteIssue increments an issue's upvote counter
func (ic *IssueController) UpvoteIssue(c *gin.Context) {
	id, ok := issueID(c)
	if !ok {
		return
	}

	upvotes, err := ic.store.Upvote(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			ic.log.Error("failed to upvote issue", zap.Uint("issue_id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upvote issue"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "upvotes": upvotes})
}

func issueID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return 0, false
	}
	return uint(id), true
}
