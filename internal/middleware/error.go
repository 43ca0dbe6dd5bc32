package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Raiterion-coder/finance-manager/internal/errors"
	"github.com/Raiterion-coder/finance-manager/internal/logger"
)

// ErrorHandler renders errors pushed with c.Error as JSON error bodies.
// Responses already written by a handler are left untouched.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		// Process the last error (most relevant in a middleware chain)
		abortWithError(c, c.Errors.Last().Err)
	}
}

// Recovery turns a panic into a logged INTERNAL_ERROR response.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Get().Errorw("panic recovered",
			"panic", recovered,
			"request_id", RequestID(c),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		abortWithError(c, apperrors.ErrInternalServer)
	})
}

// abortWithError writes err as {"error":{"code","message"}} and aborts the chain.
// Internal causes are logged, never sent.
func abortWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		logger.Get().Errorw("unexpected error",
			"error", err.Error(),
			"request_id", RequestID(c),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		appErr = apperrors.ErrInternalServer
	} else if appErr.Internal != nil {
		logger.Get().Errorw("app error",
			"code", appErr.Code,
			"message", appErr.Message,
			"internal", appErr.Internal.Error(),
			"request_id", RequestID(c),
			"path", c.Request.URL.Path,
		)
	}

	c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
