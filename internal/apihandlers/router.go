package apihandlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"triage/internal/app"
)

// SetupRouter wires the classification endpoint, health and metrics onto a new gin engine.
func SetupRouter(a *app.App) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(RequestID(), Logger(a.Logger), Recovery(a.Logger))

	h := NewAPIHandler(a)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/classify", h.ClassifyHandler)
	}
	// Unversioned path for skill definitions that point at /api/classify.
	router.POST("/api/classify", h.ClassifyHandler)

	router.GET("/health", h.HealthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})))

	router.NoRoute(func(c *gin.Context) {
		NotFound(c, fmt.Sprintf("no route for %s %s", c.Request.Method, c.Request.URL.Path))
	})
	router.NoMethod(func(c *gin.Context) {
		MethodNotAllowed(c, fmt.Sprintf("%s not allowed on %s", c.Request.Method, c.Request.URL.Path))
	})
	return router
}
