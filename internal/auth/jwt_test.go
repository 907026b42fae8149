package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

func TestIssueAndVerifyToken(t *testing.T) {
	v := testVerifier("test-secret")

	token, err := v.IssueServiceToken("scraper-1", time.Hour)
	require.NoError(t, err)

	service, err := v.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "scraper-1", service)

	// Bearer prefix is accepted too.
	service, err = v.VerifyToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "scraper-1", service)
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	token, err := testVerifier("secret-a").IssueServiceToken("scraper-1", time.Hour)
	require.NoError(t, err)

	_, err = testVerifier("secret-b").VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	v := testVerifier("test-secret")

	token, err := v.IssueServiceToken("scraper-1", -time.Minute)
	require.NoError(t, err)

	_, err = v.VerifyToken(token)
	assert.Error(t, err)
}

func TestIssueTokenRequiresSecret(t *testing.T) {
	_, err := testVerifier("").IssueServiceToken("scraper-1", time.Hour)
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	v := testVerifier("test-secret")
	token, err := v.IssueServiceToken("scraper-1", time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.POST("/posts", v.Middleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": c.GetString("service")})
	})

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"no header", "", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/posts", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
