package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newMeRouter(repo Repo, email string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userEmail", email)
		c.Next()
	})
	NewHandler(NewService(repo)).RegisterRoutes(router.Group("/api"))
	return router
}

func TestMeReturnsUser(t *testing.T) {
	repo := NewMemoryRepo()
	if _, err := repo.GetOrCreate(context.Background(), "alice@example.com", "alice"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp := httptest.NewRecorder()
	newMeRouter(repo, "alice@example.com").ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body struct {
		Success bool `json:"success"`
		User    User `json:"user"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.User.Email != "alice@example.com" || body.User.DisplayName != "alice" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestMeUnknownUser(t *testing.T) {
	resp := httptest.NewRecorder()
	newMeRouter(NewMemoryRepo(), "ghost@example.com").ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
