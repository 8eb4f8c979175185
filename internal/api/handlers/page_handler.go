package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/isthissoup/internal/version"
	"github.com/yoockh/isthissoup/internal/web"
)

const ServiceName = "soup-gateway"

type PageHandler struct {
	props web.IndexProps
	log   *logrus.Logger
}

func NewPageHandler(fallback string, l *logrus.Logger) *PageHandler {
	if l == nil {
		l = logrus.New()
	}
	return &PageHandler{
		props: web.IndexProps{Version: version.BuildVersion, Fallback: fallback},
		log:   l,
	}
}

func (h *PageHandler) Index(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := web.Index(h.props).Render(c.Request.Context(), c.Writer); err != nil {
		h.log.WithError(err).Error("page.render_failed")
	}
}

func Health(c *gin.Context) {
	info := version.Get(ServiceName)
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": info.Service,
		"version": info.Version,
		"git_sha": info.GitSHA,
	})
}
