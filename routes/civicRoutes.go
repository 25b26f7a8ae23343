package routes

import (
	"vishwaguru-be/controllers"
	"vishwaguru-be/middlewares"

	"github.com/gin-gonic/gin"
)

// CivicRoutes sets up the representative lookup and assistant routes
func CivicRoutes(r *gin.Engine, rc *controllers.RepresentativeController, ac *controllers.AssistantController) {
	mh := r.Group("/api/mh")
	{
		mh.GET("/rep-contacts", rc.GetRepContacts)
		mh.POST("/rep-contacts", rc.PostRepContacts)
		mh.GET("/districts", rc.GetDistricts)
	}

	api := r.Group("/api")
	{
		api.GET("/responsibility-map", rc.GetResponsibilityMap)
		api.POST("/chat", ac.Chat)
		api.POST("/analyze-issue", middlewares.BodyLimit(controllers.MaxRequestBytes), ac.AnalyzeIssue)
	}
}
