package response

import (
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"spacebook/internal/pkg/apperror"
)

var exposeDetails atomic.Bool

// ExposeDetails toggles whether wrapped causes are included in error bodies.
// Only enabled for development environments.
func ExposeDetails(on bool) {
	exposeDetails.Store(on)
}

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// AbortWithError writes the error envelope and stops the handler chain.
func AbortWithError(c *gin.Context, statusCode int, code string, message string) {
	Error(c, statusCode, code, message)
	c.Abort()
}

// FromError classifies err and writes the matching envelope. The raw error is
// attached to the gin context for the request logger.
func FromError(c *gin.Context, err error) {
	appErr := apperror.From(err)
	_ = c.Error(err)

	if exposeDetails.Load() && appErr.Err != nil {
		ErrorWithDetails(c, appErr.HTTPStatus(), appErr.Code, appErr.Message, appErr.Err.Error())
		return
	}
	Error(c, appErr.HTTPStatus(), appErr.Code, appErr.Message)
}
