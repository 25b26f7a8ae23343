package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vishwaguru-be/assistant"
)

// Assistant is the generation side used by the chat and analysis endpoints
type Assistant interface {
	Chat(ctx context.Context, query string, history []assistant.ChatTurn) string
	AnalyzeIssue(ctx context.Context, description string, image []byte, mimeType string) assistant.Analysis
}

// AssistantController serves /api/chat and /api/analyze-issue
type AssistantController struct {
	assistant Assistant
}

// NewAssistantController builds the controller
func NewAssistantController(a Assistant) *AssistantController {
	return &AssistantController{assistant: a}
}

// Chat answers a civic question
func (ac *AssistantController) Chat(c *gin.Context) {
	var input struct {
		Message string               `json:"message"`
		History []assistant.ChatTurn `json:"history"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(input.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	reply := ac.assistant.Chat(c.Request.Context(), input.Message, input.History)
	c.JSON(http.StatusOK, gin.H{"response": reply})
}

// AnalyzeIssue classifies a description and optional image
func (ac *AssistantController) AnalyzeIssue(c *gin.Context) {
	upload, err := readUpload(c, "image", "file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		uploadFailed(c, err)
		return
	}

	description := strings.TrimSpace(c.PostForm("description"))
	if description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "description is required"})
		return
	}

	var (
		image    []byte
		mimeType string
	)
	if upload != nil {
		image, mimeType = upload.Data, upload.ContentType
	}

	c.JSON(http.StatusOK, ac.assistant.AnalyzeIssue(c.Request.Context(), description, image, mimeType))
}
