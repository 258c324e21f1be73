// Package core renders handler results and coded errors as JSON responses.
package core

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kiosk404/oracle/pkg/errorx"
	"github.com/kiosk404/oracle/pkg/logger"
)

// ErrResponse defines the return messages when an error occurred.
type ErrResponse struct {
	// Code defines the business error code.
	Code int `json:"code"`

	// Message contains the detail of this message.
	// This message is suitable to be exposed to external
	Message string `json:"message"`

	// Reference returns the reference document which maybe useful to solve this error.
	Reference string `json:"reference,omitempty"`
}

// WriteResponse write an error or the response data into http response body.
// It use errorx.ParseCoder to parse any error into errorx.Coder.
func WriteResponse(c *gin.Context, err error, data interface{}) {
	if err != nil {
		coder := errorx.ParseCoder(err)
		if coder.HTTPStatus() >= http.StatusInternalServerError {
			logger.Error("[API] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		}
		c.JSON(coder.HTTPStatus(), ErrResponse{
			Code:      coder.Code(),
			Message:   err.Error(),
			Reference: coder.Reference(),
		})

		return
	}

	c.JSON(http.StatusOK, data)
}
