package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinRequireOperator adapts the net/http operator middleware to Gin.
func GinRequireOperator(auth *AuthMiddleware) gin.HandlerFunc {
	return adapt(auth.RequireOperator)
}

// GinRequireAdmin adapts the net/http admin middleware to Gin.
func GinRequireAdmin(auth *AuthMiddleware) gin.HandlerFunc {
	return adapt(auth.RequireAdmin)
}

func adapt(wrap func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Bridge handler to allow net/http middleware execution
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})

		// Execute middleware chain
		wrap(next).ServeHTTP(c.Writer, c.Request)

		// If auth middleware already handled the response, stop Gin chain
		if c.Writer.Written() {
			c.Abort()
			return
		}
	}
}
