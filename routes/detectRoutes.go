package routes

import (
	"vishwaguru-be/controllers"
	"vishwaguru-be/inference"
	"vishwaguru-be/middlewares"

	"github.com/gin-gonic/gin"
)

// DetectRoutes registers POST /api/detect-{name} for every detector
func DetectRoutes(r *gin.Engine, dc *controllers.DetectController) {
	api := r.Group("/api", middlewares.BodyLimit(controllers.MaxRequestBytes))
	for _, d := range inference.Detectors() {
		api.POST("/detect-"+d.Name, dc.Detect(d))
	}
}
