package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rikuzen/chatferry/internal/common"
)

// Recovery converts panics into a 500 response instead of killing the
// connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("httpapi: panic on %s %s: %v", c.Request.Method, c.Request.URL.Path, r)
				common.Fail(c, http.StatusInternalServerError, "internal error")
				c.Abort()
			}
		}()
		c.Next()
	}
}
