package routes

import (
	"vishwaguru-be/controllers"
	"vishwaguru-be/middlewares"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the issue routes. limiter may be nil.
func IssueRoutes(r *gin.Engine, ic *controllers.IssueController, limiter gin.HandlerFunc) {
	issues := r.Group("/api/issues")
	{
		create := []gin.HandlerFunc{middlewares.BodyLimit(controllers.MaxRequestBytes)}
		if limiter != nil {
			create = append(create, limiter)
		}
		create = append(create, ic.CreateIssue)
		issues.POST("", create...)
		issues.GET("", ic.GetIssues)
		issues.GET("/recent", ic.GetRecentIssues)
		issues.GET("/:id", ic.GetIssue)
		issues.POST("/:id/upvote", ic.UpvoteIssue)
	}
}
