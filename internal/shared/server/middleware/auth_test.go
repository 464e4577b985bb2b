package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-generator/internal/shared/auth"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *auth.Verifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	verifier, err := auth.NewVerifier("test-secret", false)
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	router := gin.New()
	router.Use(Auth(verifier))
	router.GET("/api/whoami", func(c *gin.Context) {
		id := IdentityFromContext(c)
		c.JSON(http.StatusOK, gin.H{"email": id.Email, "name": id.Name})
	})
	return router, verifier
}

func errorMessage(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body.Error
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	router, _ := newAuthRouter(t)
	router.OPTIONS("/api/whoami", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodOptions, "/api/whoami", nil))

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthRejections(t *testing.T) {
	router, verifier := newAuthRouter(t)
	noEmail, err := verifier.Sign(auth.Identity{Name: "ghost"}, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	cases := []struct {
		name   string
		header string
		want   string
	}{
		{name: "missing", header: "", want: "Missing or invalid Authorization header"},
		{name: "basic", header: "Basic abc", want: "Missing or invalid Authorization header"},
		{name: "garbage", header: "Bearer not-a-token", want: "Invalid or expired token"},
		{name: "no email", header: "Bearer " + noEmail, want: "Email not found in token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", resp.Code)
			}
			if got := errorMessage(t, resp); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestAuthStoresIdentity(t *testing.T) {
	router, verifier := newAuthRouter(t)
	token, err := verifier.Sign(auth.Identity{Email: "alice@example.com", Name: "alice"}, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["email"] != "alice@example.com" || body["name"] != "alice" {
		t.Fatalf("unexpected identity: %v", body)
	}
}
