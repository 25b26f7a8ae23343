package routes

import (
	"net/http"
	"time"

	"vishwaguru-be/controllers"
	"vishwaguru-be/middlewares"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies is everything the router needs
type Dependencies struct {
	Log            *zap.Logger
	Issues         *controllers.IssueController
	Detect         *controllers.DetectController
	Representative *controllers.RepresentativeController
	Assistant      *controllers.AssistantController
	// IssueLimiter guards issue creation when set
	IssueLimiter gin.HandlerFunc
	// Observer receives per-request metrics when set
	Observer middlewares.RequestObserver
	// Metrics serves /metrics when set
	Metrics        http.Handler
	AllowedOrigins []string
}

// NewRouter builds the gin engine with every route registered
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = controllers.MaxUploadBytes
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestLogger(deps.Log.Named("http"), deps.Observer))
	r.Use(cors.New(corsConfig(deps.AllowedOrigins)))

	r.GET("/", controllers.Root)
	r.GET("/health", controllers.Health)
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	IssueRoutes(r, deps.Issues, deps.IssueLimiter)
	DetectRoutes(r, deps.Detect)
	CivicRoutes(r, deps.Representative, deps.Assistant)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
