package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vishwaguru-be/inference"
)

// Classifier runs one detector over an image
type Classifier interface {
	Detect(ctx context.Context, d inference.Detector, image []byte) []inference.Detection
}

// DetectController serves the /api/detect-* endpoints
type DetectController struct {
	classifier Classifier
}

// NewDetectController builds the controller
func NewDetectController(classifier Classifier) *DetectController {
	return &DetectController{classifier: classifier}
}

// Detect returns a handler bound to one detector. Classifier failures
// still answer 200 with an empty list.
func (dc *DetectController) Detect(d inference.Detector) gin.HandlerFunc {
	return func(c *gin.Context) {
		upload, err := readUpload(c, "image", "file")
		if errors.Is(err, http.ErrMissingFile) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
			return
		}
		if err != nil {
			uploadFailed(c, err)
			return
		}

		detections := dc.classifier.Detect(c.Request.Context(), d, upload.Data)
		c.JSON(http.StatusOK, gin.H{"detections": detections})
	}
}
