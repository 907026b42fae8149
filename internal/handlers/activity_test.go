package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"solmentions/internal/dispatch"
	"solmentions/internal/intent"
	"solmentions/internal/models"
	"solmentions/internal/store"

	"github.com/gin-gonic/gin"
)

func setupActivityRouter(t *testing.T) (*gin.Engine, *store.PostStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	posts := store.NewPostStore(db)
	dispatcher := dispatch.NewDispatcher(posts, intent.NewExtractor(), dispatch.Config{BatchLimit: 100})
	h := NewActivityHandler(dispatcher)

	r := gin.New()
	r.GET("/health", h.HealthCheck)
	r.GET("/api/activity/process", h.ProcessActivity)
	return r, posts
}

func TestHealthCheck(t *testing.T) {
	r, _ := setupActivityRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("Expected status ok, got %q", resp["status"])
	}
}

func TestProcessActivityReturnsReport(t *testing.T) {
	r, posts := setupActivityRouter(t)

	err := posts.Insert(&models.Post{
		ID:              "1",
		Author:          "rita",
		Content:         "just vibing today",
		IsDirectMention: true,
	})
	if err != nil {
		t.Fatalf("Failed to insert post: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/activity/process", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var report dispatch.BatchReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("Failed to parse report: %v", err)
	}
	if report.ProcessedCount != 1 {
		t.Errorf("Expected 1 post in report, got %d", report.ProcessedCount)
	}
	if len(report.Actions) != 1 || report.Actions[0].Original.ID != "1" {
		t.Errorf("Expected post 1 in actions, got %+v", report.Actions)
	}
}

func TestProcessActivityEmptyBatch(t *testing.T) {
	r, _ := setupActivityRouter(t)

	req := httptest.NewRequest("GET", "/api/activity/process", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for empty batch, got %d", w.Code)
	}
	var report dispatch.BatchReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("Failed to parse report: %v", err)
	}
	if report.ProcessedCount != 0 {
		t.Errorf("Expected empty report, got %d", report.ProcessedCount)
	}
}
