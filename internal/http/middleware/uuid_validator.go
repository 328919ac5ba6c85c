package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UUIDValidator проверяет, что параметр пути является валидным UUID.
// Использование: router.GET("/bounties/:id", UUIDValidator("id"), handler.Get)
func UUIDValidator(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.Param(paramName)
		if idStr == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "параметр " + paramName + " обязателен",
			})
			return
		}

		if _, err := uuid.Parse(idStr); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "параметр " + paramName + " должен быть валидным UUID",
			})
			return
		}

		c.Next()
	}
}
