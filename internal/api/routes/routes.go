package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yoockh/isthissoup/internal/api/handlers"
)

type Deps struct {
	Page   *handlers.PageHandler
	Ask    *handlers.AskHandler
	Render *handlers.RenderHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/health", handlers.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/", d.Page.Index)

	api := r.Group("/api")
	api.POST("/ask-soup", d.Ask.Ask)
	api.POST("/render", d.Render.Render)
}
