package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/bounty-backend/internal/logger"
	"github.com/ignatzorin/bounty-backend/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки централизованно: AppError уходит клиенту
// со своим статусом и кодом, всё остальное маскируется как внутренняя ошибка.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.HTTPStatus >= http.StatusInternalServerError && logger.Log != nil {
				logger.Log.WithFields(logrus.Fields{
					"error":  appErr.Error(),
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				}).Error("request error")
			}
			c.JSON(appErr.HTTPStatus, gin.H{
				"error": appErr.Message,
				"code":  appErr.Code,
			})
			return
		}

		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"error":  err.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Error("unhandled request error")
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "внутренняя ошибка сервера",
			"code":  apperror.ErrCodeInternal,
		})
	}
}
