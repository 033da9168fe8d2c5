package middleware

import "github.com/gin-gonic/gin"

// OperatorHeader identifies the console operator on calls made on their
// behalf by admin-service. The value is opaque.
const OperatorHeader = "X-Console-Operator"

// OperatorKey keys per-operator limits: the forwarded operator when present,
// the client IP otherwise.
func OperatorKey(c *gin.Context) string {
	if op := c.GetHeader(OperatorHeader); op != "" {
		return "op:" + op
	}
	return "ip:" + c.ClientIP()
}
