package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorHandler recovers from panics in handlers. Clients only ever see a
// translation key; the panic and stack stay in the server log.
func ErrorHandler(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Errorf("Panic recovered: %v\nStack trace:\n%s", err, debug.Stack())

				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "unexpected_error",
				})
				c.Abort()
			}
		}()

		c.Next()
	}
}
