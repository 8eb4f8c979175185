package handlers

import (
	"bytes"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/yoockh/isthissoup/internal/models"
	"github.com/yoockh/isthissoup/internal/utils"
)

const MsgMarkdownRequired = "Markdown is required"

type RenderHandler struct {
	md goldmark.Markdown
}

// NewRenderHandler renders finished answers. Raw HTML in the input is
// dropped because goldmark's unsafe mode stays off.
func NewRenderHandler() *RenderHandler {
	return &RenderHandler{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

func (h *RenderHandler) Render(c *gin.Context) {
	const op = "RenderHandler.Render"

	var req models.RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "Invalid request format", err))
		return
	}
	if strings.TrimSpace(req.Markdown) == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, MsgMarkdownRequired, nil))
		return
	}

	var buf bytes.Buffer
	if err := h.md.Convert([]byte(req.Markdown), &buf); err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "Failed to render answer", err))
		return
	}

	c.JSON(200, models.RenderResponse{HTML: buf.String()})
}
