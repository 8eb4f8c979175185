package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/isthissoup/internal/utils"
)

// APIError is the body of every non-2xx JSON response.
type APIError struct {
	Error string     `json:"error"`
	Code  utils.Code `json:"code,omitempty"`
}

func writeError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)
	_ = c.Error(err)

	var ae *utils.AppError
	if errors.As(err, &ae) && ae.Message != "" {
		c.JSON(status, APIError{
			Error: ae.Message,
			Code:  ae.Code,
		})
		return
	}

	c.JSON(status, APIError{
		Error: http.StatusText(status),
		Code:  utils.CodeInternal,
	})
}
