package middlewares

import "github.com/gin-gonic/gin"

// gin context keys
const (
	CtxRequestID = "request_id"
	CtxUserID    = "auth.userID"
	CtxEmail     = "auth.email"
)

// abortWithError writes the shared error envelope from middleware that cannot
// import the handlers package.
func abortWithError(c *gin.Context, status int, code, message string) {
	reqID, _ := c.Get(CtxRequestID)
	body := gin.H{
		"code":    code,
		"message": message,
	}
	if s, ok := reqID.(string); ok && s != "" {
		body["requestId"] = s
	}

	c.AbortWithStatusJSON(status, gin.H{"error": body})
}
