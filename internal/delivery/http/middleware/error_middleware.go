package middleware

import (
	"errors"
	"go-talent-search-backend/internal/delivery/http/response"
	"go-talent-search-backend/pkg/apperror"
	"go-talent-search-backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Check if there are errors appended to the context
		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				response.Error(c, appErr.Code, appErr.Message, nil)
			} else {
				// SECURITY: Never expose internal error details to clients.
				// Log the actual error server-side for debugging, but send a
				// generic message to the user to prevent information disclosure.
				logger.Log.Error("unhandled error", "error", err, "path", c.FullPath())
				response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
			}
		}
	}
}
