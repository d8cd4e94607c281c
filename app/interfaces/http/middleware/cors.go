package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"nestiq.ai/listing-gateway/config/environment_variables"
)

func CORS() gin.HandlerFunc {
	allowed := make(map[string]bool, len(environment_variables.EnvironmentVariables.ALLOWED_CORS_HOSTS))
	for _, host := range environment_variables.EnvironmentVariables.ALLOWED_CORS_HOSTS {
		allowed[host] = true
	}
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowed[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
