package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/lumenworks/sitecms/internal/cache"
	"github.com/lumenworks/sitecms/internal/document"
	"github.com/lumenworks/sitecms/internal/handlers"
	"github.com/lumenworks/sitecms/internal/models"
	"github.com/lumenworks/sitecms/internal/reorder"
	"github.com/lumenworks/sitecms/internal/services"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Post{}, &models.PostTranslation{}, &models.Category{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

// TestSaveAndGetPost tests POST /api/posts followed by GET /api/posts/:id
func TestSaveAndGetPost(t *testing.T) {
	db := setupTestDB(t)

	app := fiber.New()
	handler := &handlers.PostsHandler{DB: db, Cache: cache.Noop{}}
	app.Post("/api/posts", handler.SavePost)
	app.Get("/api/posts/:id", handler.GetPost)

	payload := map[string]any{
		"type":     document.TypeCases,
		"category": "精密加工",
		"title":    "シャフト加工",
		"sections": []any{},
	}
	resp, err := app.Test(jsonRequest(t, "POST", "/api/posts?language=ja", payload))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var saved map[string]any
	decodeBody(t, resp, &saved)
	if saved["ok"] != true {
		t.Errorf("Expected ok true, got %v", saved)
	}
	id := int64(saved["id"].(float64))
	if id <= 0 {
		t.Fatalf("Expected assigned id, got %v", saved["id"])
	}

	resp, err = app.Test(httptest.NewRequest("GET", fmt.Sprintf("/api/posts/%d?language=ja", id), nil))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var got document.Product
	decodeBody(t, resp, &got)
	if got.Title != "シャフト加工" || got.Category != "精密加工" {
		t.Errorf("Post fields lost: %+v", got)
	}
}

// TestGetPostNotFound tests the 404 envelope
func TestGetPostNotFound(t *testing.T) {
	db := setupTestDB(t)

	app := fiber.New()
	handler := &handlers.PostsHandler{DB: db, Cache: cache.Noop{}}
	app.Get("/api/posts/:id", handler.GetPost)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/posts/9999", nil))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}

	var body map[string]any
	decodeBody(t, resp, &body)
	if body["ok"] != false {
		t.Errorf("Expected ok false in envelope, got %v", body)
	}
}

// TestListPostsFiltered tests GET /api/posts with a type filter
func TestListPostsFiltered(t *testing.T) {
	db := setupTestDB(t)

	for _, seed := range []document.Product{
		{Type: document.TypeCases, Title: "case-a"},
		{Type: document.TypeNews, Title: "news-a"},
	} {
		if _, err := services.SavePost(db, seed, "ja"); err != nil {
			t.Fatalf("Failed to seed: %v", err)
		}
	}

	app := fiber.New()
	handler := &handlers.PostsHandler{DB: db, Cache: cache.Noop{}}
	app.Get("/api/posts", handler.ListPosts)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/posts?type=cases&language=ja", nil))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	var got []document.Product
	decodeBody(t, resp, &got)
	if len(got) != 1 || got[0].Title != "case-a" {
		t.Errorf("Filter failed: %+v", got)
	}
}

// TestSavePostRejectsUnknownType tests the 400 on a bad post type
func TestSavePostRejectsUnknownType(t *testing.T) {
	db := setupTestDB(t)

	app := fiber.New()
	handler := &handlers.PostsHandler{DB: db, Cache: cache.Noop{}}
	app.Post("/api/posts", handler.SavePost)

	resp, err := app.Test(jsonRequest(t, "POST", "/api/posts", map[string]any{"type": "blog"}))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}
}

// TestDeletePostEndpoint tests DELETE /api/posts/:id
func TestDeletePostEndpoint(t *testing.T) {
	db := setupTestDB(t)
	id, _ := services.SavePost(db, document.Product{Type: document.TypeCases, Title: "x"}, "ja")

	app := fiber.New()
	handler := &handlers.PostsHandler{DB: db, Cache: cache.Noop{}}
	app.Delete("/api/posts/:id", handler.DeletePost)

	resp, err := app.Test(httptest.NewRequest("DELETE", fmt.Sprintf("/api/posts/%d", id), nil))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if _, err := services.GetPost(db, id, "ja"); err == nil {
		t.Error("Post still present after delete")
	}
}

// TestCategoryEndpoints tests the category vocabulary routes end to end
func TestCategoryEndpoints(t *testing.T) {
	db := setupTestDB(t)

	app := fiber.New()
	handler := &handlers.CategoriesHandler{DB: db}
	app.Get("/api/categories", handler.ListCategories)
	app.Post("/api/categories", handler.CreateCategory)
	app.Put("/api/categories/:id", handler.UpdateCategory)
	app.Delete("/api/categories/:id", handler.DeleteCategory)

	resp, err := app.Test(jsonRequest(t, "POST", "/api/categories", map[string]any{
		"name": "精密加工", "type": document.TypeCases,
	}))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	var saved map[string]any
	decodeBody(t, resp, &saved)
	id := int64(saved["id"].(float64))

	// Duplicate is a conflict
	resp, _ = app.Test(jsonRequest(t, "POST", "/api/categories", map[string]any{
		"name": "精密加工", "type": document.TypeCases,
	}))
	if resp.StatusCode != 409 {
		t.Errorf("Expected status 409 for duplicate, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/api/categories?type=cases", nil))
	var cats []models.Category
	decodeBody(t, resp, &cats)
	if len(cats) != 1 || cats[0].Name != "精密加工" {
		t.Errorf("Listing wrong: %+v", cats)
	}

	resp, _ = app.Test(jsonRequest(t, "PUT", fmt.Sprintf("/api/categories/%d", id), map[string]any{
		"name": "溶接",
	}))
	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200 on update, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest("DELETE", fmt.Sprintf("/api/categories/%d", id), nil))
	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200 on delete, got %d", resp.StatusCode)
	}
	resp, _ = app.Test(httptest.NewRequest("DELETE", fmt.Sprintf("/api/categories/%d", id), nil))
	if resp.StatusCode != 404 {
		t.Errorf("Expected status 404 on second delete, got %d", resp.StatusCode)
	}
}

// TestReorderEndpoints tests the display-order routes with a flush
func TestReorderEndpoints(t *testing.T) {
	db := setupTestDB(t)

	for i := 0; i < 3; i++ {
		if _, err := services.SavePost(db, document.Product{Type: document.TypeCases, Title: fmt.Sprintf("p%d", i)}, "ja"); err != nil {
			t.Fatalf("Failed to seed: %v", err)
		}
	}

	registry := reorder.NewRegistry(time.Hour, func(ctx context.Context, postType string, order []int64) error {
		return reorder.ReorderPosts(db.WithContext(ctx), order, postType)
	})
	defer registry.StopAll()

	app := fiber.New()
	handler := &handlers.ReorderHandler{DB: db, Registry: registry, Cache: cache.Noop{}}
	app.Get("/api/posts/:type/order", handler.GetOrder)
	app.Put("/api/posts/:type/order", handler.SetOrder)
	app.Post("/api/posts/:type/order/flush", handler.FlushOrder)

	// Unknown type is rejected
	resp, _ := app.Test(httptest.NewRequest("GET", "/api/posts/blog/order", nil))
	if resp.StatusCode != 400 {
		t.Errorf("Expected status 400 for unknown type, got %d", resp.StatusCode)
	}

	// Read the server order, then submit its reversal. String ids are
	// accepted alongside numbers.
	resp, err := app.Test(httptest.NewRequest("GET", "/api/posts/cases/order", nil))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	var before struct {
		Order []int64 `json:"order"`
	}
	decodeBody(t, resp, &before)
	if len(before.Order) != 3 {
		t.Fatalf("Expected 3 posts in order, got %v", before.Order)
	}
	want := []any{fmt.Sprint(before.Order[2]), before.Order[1], before.Order[0]}
	wantIDs := []int64{before.Order[2], before.Order[1], before.Order[0]}

	resp, err = app.Test(jsonRequest(t, "PUT", "/api/posts/cases/order", map[string]any{"order": want}))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	var body map[string]any
	decodeBody(t, resp, &body)
	if body["unsaved"] != true {
		t.Errorf("Pending reorder should read as unsaved: %v", body)
	}

	// Flush persists immediately
	resp, _ = app.Test(httptest.NewRequest("POST", "/api/posts/cases/order/flush", nil))
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200 on flush, got %d", resp.StatusCode)
	}

	got, err := reorder.GetPostOrder(db, document.TypeCases)
	if err != nil {
		t.Fatalf("Failed to read order: %v", err)
	}
	for i := range wantIDs {
		if got[i] != wantIDs[i] {
			t.Errorf("Position %d: expected %d, got %d", i, wantIDs[i], got[i])
		}
	}
}

// TestOrderReflectsCreatesAndDeletes verifies the order endpoint picks
// up posts created or deleted after the per-type manager was first
// seeded, while a pending local edit is never clobbered by the refetch.
func TestOrderReflectsCreatesAndDeletes(t *testing.T) {
	db := setupTestDB(t)

	first, err := services.SavePost(db, document.Product{Type: document.TypeCases, Title: "first"}, "ja")
	if err != nil {
		t.Fatalf("Failed to seed: %v", err)
	}

	registry := reorder.NewRegistry(time.Hour, func(ctx context.Context, postType string, order []int64) error {
		return reorder.ReorderPosts(db.WithContext(ctx), order, postType)
	})
	defer registry.StopAll()

	app := fiber.New()
	handler := &handlers.ReorderHandler{DB: db, Registry: registry, Cache: cache.Noop{}}
	app.Get("/api/posts/:type/order", handler.GetOrder)
	app.Put("/api/posts/:type/order", handler.SetOrder)

	readOrder := func() []int64 {
		t.Helper()
		resp, err := app.Test(httptest.NewRequest("GET", "/api/posts/cases/order", nil))
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		var body struct {
			Order []int64 `json:"order"`
		}
		decodeBody(t, resp, &body)
		return body.Order
	}

	if got := readOrder(); len(got) != 1 || got[0] != first {
		t.Fatalf("Initial order wrong: %v", got)
	}

	// A post created after the first read must appear on the next one.
	second, err := services.SavePost(db, document.Product{Type: document.TypeCases, Title: "second"}, "ja")
	if err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	got := readOrder()
	if len(got) != 2 {
		t.Fatalf("New post missing from order listing: %v", got)
	}

	// A deleted post must drop out.
	if err := services.DeletePost(db, first); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if got := readOrder(); len(got) != 1 || got[0] != second {
		t.Fatalf("Deleted post still in order listing: %v", got)
	}

	// A pending edit survives subsequent reads untouched.
	_, _ = services.SavePost(db, document.Product{Type: document.TypeCases, Title: "third"}, "ja")
	current := readOrder()
	want := []int64{current[1], current[0]}
	resp, _ := app.Test(jsonRequest(t, "PUT", "/api/posts/cases/order", map[string]any{"order": want}))
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	_, _ = services.SavePost(db, document.Product{Type: document.TypeCases, Title: "fourth"}, "ja")
	got = readOrder()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Pending edit clobbered by refetch: %v", got)
	}
}

// TestEditorSessionFlow tests the editing session lifecycle: open a
// draft, patch fields, build sections, publish, verify persistence.
func TestEditorSessionFlow(t *testing.T) {
	db := setupTestDB(t)

	app := fiber.New()
	handler := &handlers.EditorHandler{DB: db, Sessions: document.NewManager(), Cache: cache.Noop{}}
	app.Post("/api/editor/:session/open", handler.Open)
	app.Get("/api/editor/:session", handler.Get)
	app.Patch("/api/editor/:session/fields", handler.UpdateFields)
	app.Post("/api/editor/:session/sections", handler.AddSection)
	app.Patch("/api/editor/:session/sections/:sectionId", handler.UpdateSection)
	app.Post("/api/editor/:session/sections/:sectionId/move", handler.MoveSection)
	app.Delete("/api/editor/:session/sections/:sectionId", handler.RemoveSection)
	app.Post("/api/editor/:session/publish", handler.Publish)
	app.Delete("/api/editor/:session", handler.Discard)

	// Open a fresh draft
	resp, err := app.Test(jsonRequest(t, "POST", "/api/editor/s1/open", map[string]any{"type": document.TypeNews}))
	if err != nil {
		t.Fatalf("Failed to open session: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	// Patch scalar fields
	resp, _ = app.Test(jsonRequest(t, "PATCH", "/api/editor/s1/fields", map[string]string{
		"title":    "夏季休業のお知らせ",
		"category": "お知らせ",
	}))
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200 on fields, got %d", resp.StatusCode)
	}

	// Add two sections and patch the first
	resp, _ = app.Test(jsonRequest(t, "POST", "/api/editor/s1/sections", map[string]any{"type": "rich-text"}))
	var sec1 map[string]any
	decodeBody(t, resp, &sec1)
	resp, _ = app.Test(jsonRequest(t, "POST", "/api/editor/s1/sections", map[string]any{"type": "video"}))
	var sec2 map[string]any
	decodeBody(t, resp, &sec2)

	resp, _ = app.Test(jsonRequest(t, "PATCH", fmt.Sprintf("/api/editor/s1/sections/%s", sec1["id"]), map[string]any{
		"content": "<p>休業します</p>",
	}))
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200 on section patch, got %d", resp.StatusCode)
	}

	// Move the second section up
	resp, _ = app.Test(jsonRequest(t, "POST", fmt.Sprintf("/api/editor/s1/sections/%s/move", sec2["id"]), map[string]any{
		"direction": "up",
	}))
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200 on move, got %d", resp.StatusCode)
	}
	var afterMove document.Product
	decodeBody(t, resp, &afterMove)
	for _, sec := range afterMove.Sections {
		if sec.ID == sec2["id"] && sec.Order != 0 {
			t.Errorf("Moved section should be first, order = %d", sec.Order)
		}
	}

	// Publish and verify persistence
	resp, _ = app.Test(jsonRequest(t, "POST", "/api/editor/s1/publish", map[string]any{"language": "ja"}))
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200 on publish, got %d", resp.StatusCode)
	}
	var published map[string]any
	decodeBody(t, resp, &published)
	id := int64(published["id"].(float64))

	got, err := services.GetPost(db, id, "ja")
	if err != nil {
		t.Fatalf("Published post not persisted: %v", err)
	}
	if got.Title != "夏季休業のお知らせ" || len(got.Sections) != 2 {
		t.Errorf("Published content wrong: %+v", got)
	}

	// Discard ends the session
	resp, _ = app.Test(httptest.NewRequest("DELETE", "/api/editor/s1", nil))
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200 on discard, got %d", resp.StatusCode)
	}
	resp, _ = app.Test(httptest.NewRequest("GET", "/api/editor/s1", nil))
	if resp.StatusCode != 404 {
		t.Errorf("Expected status 404 after discard, got %d", resp.StatusCode)
	}
}
