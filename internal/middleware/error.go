package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "budgetbell/internal/errors"
	"budgetbell/internal/logger"
)

// ErrorHandler turns errors attached with c.Error into the JSON error body
// used across the API. Handlers that already wrote a response are left alone.
// Unknown errors are logged with the request ID and reported as INTERNAL_ERROR.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		log := logger.Named("http").With(
			"request_id", c.GetString(requestIDKey),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)

		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			log.Errorw("unexpected error", "error", err.Error())
			appErr = apperrors.ErrInternalServer
		} else if appErr.Internal != nil {
			log.Errorw("app error", "code", appErr.Code, "internal", appErr.Internal.Error())
		}

		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
	}
}
