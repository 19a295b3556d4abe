package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
)

func TestAutomationAuth(t *testing.T) {
	newRouter := func(secret string) *gin.Engine {
		router := gin.New()
		router.Use(RequestID())
		router.POST("/fulfillments", AutomationAuth(secret), func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})
		return router
	}

	tests := []struct {
		name       string
		secret     string
		target     string
		header     string
		wantStatus int
	}{
		{"header secret", "s3cret", "/fulfillments", "s3cret", http.StatusOK},
		{"query secret", "s3cret", "/fulfillments?secret=s3cret", "", http.StatusOK},
		{"header wins over query", "s3cret", "/fulfillments?secret=wrong", "s3cret", http.StatusOK},
		{"wrong secret", "s3cret", "/fulfillments?secret=nope", "", http.StatusUnauthorized},
		{"missing secret", "s3cret", "/fulfillments", "", http.StatusUnauthorized},
		{"prefix of secret", "s3cret", "/fulfillments?secret=s3c", "", http.StatusUnauthorized},
		{"unconfigured secret rejects empty", "", "/fulfillments?secret=", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.target, nil)
			if tt.header != "" {
				req.Header.Set(AutomationSecretHeader, tt.header)
			}
			w := httptest.NewRecorder()
			newRouter(tt.secret).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), dto.ErrCodeUnauthorized)
			}
		})
	}
}
