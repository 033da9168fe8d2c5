package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestOperatorKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newContext := func(operator string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
		c.Request.RemoteAddr = "10.0.0.7:5555"
		if operator != "" {
			c.Request.Header.Set(OperatorHeader, operator)
		}
		return c
	}

	t.Run("Forwarded operator", func(t *testing.T) {
		assert.Equal(t, "op:abc", OperatorKey(newContext("abc")))
	})

	t.Run("Operators behind one proxy get separate keys", func(t *testing.T) {
		assert.NotEqual(t, OperatorKey(newContext("abc")), OperatorKey(newContext("def")))
	})

	t.Run("Falls back to client IP", func(t *testing.T) {
		assert.Equal(t, "ip:10.0.0.7", OperatorKey(newContext("")))
	})
}
