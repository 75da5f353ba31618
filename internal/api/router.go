package api

import (
	"github.com/gin-gonic/gin"
	"github.com/morphingprojections/projection-job/internal/api/handler"
	"github.com/morphingprojections/projection-job/internal/api/middleware"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	runner handler.ProjectionRunner,
	db handler.Pinger,
	cors middleware.CORSConfig,
	mode string,
) *gin.Engine {
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cors))

	healthHandler := handler.NewHealthHandler(db)
	projectionHandler := handler.NewProjectionHandler(runner)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		cases := v1.Group("/cases/:id")
		cases.POST("/projections", projectionHandler.Run)
		cases.GET("/annotations", projectionHandler.Annotations)
	}

	return r
}
