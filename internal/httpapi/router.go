package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rikuzen/chatferry/internal/httpapi/handlers"
	"github.com/rikuzen/chatferry/internal/httpapi/middleware"
	"github.com/rikuzen/chatferry/internal/metrics"
)

// NewRouter wires the API. Dialogue payloads arrive as POSTs on arbitrary
// paths, so the catch-all route ingests any POST and answers everything else
// with the fixed not-supported line.
func NewRouter(h *handlers.Handler, authSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), middleware.Recovery(), middleware.RequestID())

	r.POST("/", h.Ingest)
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method == http.MethodPost {
			h.Ingest(c)
			return
		}
		h.NotSupported(c)
	})

	r.GET("/ping", h.Ping)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/stream", func(c *gin.Context) {
		h.Overlay.HandleWS(c.Writer, c.Request)
	})

	api := r.Group("/api")
	{
		api.GET("/logs/:date", h.GetDayLog)
		api.GET("/search", h.Search)

		relay := api.Group("/relay")
		if authSecret != "" {
			relay.Use(middleware.AuthRequired(authSecret))
		}
		relay.POST("/start", h.StartRelay)
		relay.POST("/stop", h.StopRelay)
	}

	return r
}
