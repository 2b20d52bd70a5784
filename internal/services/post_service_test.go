package services_test

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/lumenworks/sitecms/internal/document"
	"github.com/lumenworks/sitecms/internal/models"
	"github.com/lumenworks/sitecms/internal/sections"
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

	err = db.AutoMigrate(
		&models.Post{},
		&models.PostTranslation{},
		&models.Category{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func sampleProduct() document.Product {
	sec := sections.New(sections.TypeRichText, 0)
	sec.Data = &sections.RichTextData{Content: "<p>本文</p>"}
	return document.Product{
		Type:            document.TypeCases,
		Category:        "精密加工",
		Thumbnail:       "/thumb.jpg",
		Date:            "2026-08-01",
		Title:           "加工事例",
		CardDescription: "説明",
		MetaTitle:       "加工事例 | 会社",
		Sections:        []sections.Section{sec},
	}
}

// TestSavePostNewAssignsID verifies a fresh save creates the neutral
// row plus exactly one translation and returns the new id.
func TestSavePostNewAssignsID(t *testing.T) {
	db := setupTestDB(t)

	id, err := services.SavePost(db, sampleProduct(), "ja")
	if err != nil {
		t.Fatalf("Failed to save post: %v", err)
	}
	if id <= 0 {
		t.Fatalf("Expected positive id, got %d", id)
	}

	var count int64
	db.Model(&models.PostTranslation{}).Where("post_id = ?", id).Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 translation row, got %d", count)
	}

	got, err := services.GetPost(db, id, "ja")
	if err != nil {
		t.Fatalf("Failed to get post: %v", err)
	}
	if got.Title != "加工事例" || got.Category != "精密加工" {
		t.Errorf("Translation fields lost: %+v", got)
	}
	if len(got.Sections) != 1 {
		t.Fatalf("Expected 1 section, got %d", len(got.Sections))
	}
	if got.CreatedAt == 0 || got.UpdatedAt == 0 {
		t.Error("Timestamps not stamped")
	}
}

// TestSavePostSecondLanguage verifies saving the same post under a
// second language adds a row without touching the first.
func TestSavePostSecondLanguage(t *testing.T) {
	db := setupTestDB(t)

	p := sampleProduct()
	id, err := services.SavePost(db, p, "ja")
	if err != nil {
		t.Fatalf("Failed to save ja: %v", err)
	}

	p.ID = id
	p.Title = "Machining case"
	p.CardDescription = "english card"
	if _, err := services.SavePost(db, p, "en"); err != nil {
		t.Fatalf("Failed to save en: %v", err)
	}

	ja, err := services.GetPost(db, id, "ja")
	if err != nil {
		t.Fatalf("Failed to get ja: %v", err)
	}
	en, err := services.GetPost(db, id, "en")
	if err != nil {
		t.Fatalf("Failed to get en: %v", err)
	}
	if ja.Title != "加工事例" {
		t.Errorf("ja translation clobbered: %q", ja.Title)
	}
	if en.Title != "Machining case" {
		t.Errorf("en translation missing: %q", en.Title)
	}
}

// TestSavePostUpsertKeepsOneRow verifies repeated saves for one
// language update in place instead of accumulating rows.
func TestSavePostUpsertKeepsOneRow(t *testing.T) {
	db := setupTestDB(t)

	p := sampleProduct()
	id, _ := services.SavePost(db, p, "ja")

	p.ID = id
	p.Title = "改訂版"
	for i := 0; i < 3; i++ {
		if _, err := services.SavePost(db, p, "ja"); err != nil {
			t.Fatalf("Failed to re-save: %v", err)
		}
	}

	var count int64
	db.Model(&models.PostTranslation{}).
		Where("post_id = ? AND language_code = ?", id, "ja").
		Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 translation row after upserts, got %d", count)
	}

	got, _ := services.GetPost(db, id, "ja")
	if got.Title != "改訂版" {
		t.Errorf("Update did not land: %q", got.Title)
	}
}

// TestSavePostEmptyFieldPreservesStored verifies the non-empty-field
// filter: an empty value in the update never clears a stored one.
func TestSavePostEmptyFieldPreservesStored(t *testing.T) {
	db := setupTestDB(t)

	p := sampleProduct()
	id, _ := services.SavePost(db, p, "ja")

	update := document.Product{
		ID:       id,
		Title:    "新タイトル",
		Sections: p.Sections,
		// Category, Thumbnail, Meta* left empty on purpose
	}
	if _, err := services.SavePost(db, update, "ja"); err != nil {
		t.Fatalf("Failed to update: %v", err)
	}

	got, _ := services.GetPost(db, id, "ja")
	if got.Title != "新タイトル" {
		t.Errorf("Non-empty field not updated: %q", got.Title)
	}
	if got.Category != "精密加工" {
		t.Errorf("Empty update cleared stored category: %q", got.Category)
	}
	if got.Thumbnail != "/thumb.jpg" {
		t.Errorf("Empty update cleared stored thumbnail: %q", got.Thumbnail)
	}
	if got.MetaTitle != "加工事例 | 会社" {
		t.Errorf("Empty update cleared stored metaTitle: %q", got.MetaTitle)
	}
}

// TestSavePostSectionsAlwaysWritten verifies sections bypass the
// non-empty filter: an empty list still overwrites.
func TestSavePostSectionsAlwaysWritten(t *testing.T) {
	db := setupTestDB(t)

	p := sampleProduct()
	id, _ := services.SavePost(db, p, "ja")

	update := document.Product{ID: id, Sections: []sections.Section{}}
	if _, err := services.SavePost(db, update, "ja"); err != nil {
		t.Fatalf("Failed to update: %v", err)
	}

	got, _ := services.GetPost(db, id, "ja")
	if len(got.Sections) != 0 {
		t.Errorf("Empty section list did not overwrite, got %d sections", len(got.Sections))
	}
}

// TestSavePostPartialFailureLeavesNeutralRow pins the legacy behavior:
// the two-table write is not transactional, so a translation failure
// strands the already-written neutral row.
func TestSavePostPartialFailureLeavesNeutralRow(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Migrator().DropTable(&models.PostTranslation{}); err != nil {
		t.Fatalf("Failed to drop table: %v", err)
	}

	_, err := services.SavePost(db, sampleProduct(), "ja")
	if err == nil {
		t.Fatal("Expected save to fail without translations table")
	}

	var count int64
	db.Model(&models.Post{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected stranded neutral row, got %d posts", count)
	}
}

// TestGetPostMissingTranslation verifies a post without a translation
// for the requested language reads with empty fields, not an error.
func TestGetPostMissingTranslation(t *testing.T) {
	db := setupTestDB(t)

	id, _ := services.SavePost(db, sampleProduct(), "ja")

	got, err := services.GetPost(db, id, "en")
	if err != nil {
		t.Fatalf("Expected fallback to empty fields, got error: %v", err)
	}
	if got.Title != "" || got.Category != "" {
		t.Errorf("Expected empty translation fields, got %+v", got)
	}
	if got.Thumbnail != "/thumb.jpg" {
		t.Errorf("Neutral fields should survive: %q", got.Thumbnail)
	}
	if got.Sections == nil || len(got.Sections) != 0 {
		t.Errorf("Expected empty section list, got %v", got.Sections)
	}
}

// TestGetPostNotFound verifies the sentinel error for a missing id.
func TestGetPostNotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := services.GetPost(db, 9999, "ja")
	if err == nil || err.Error() != "not found" {
		t.Errorf("Expected not found, got %v", err)
	}
}

// TestListPostsFilters verifies the type, category and title filters
// plus the limit.
func TestListPostsFilters(t *testing.T) {
	db := setupTestDB(t)

	seed := []struct {
		typ, cat, title string
	}{
		{document.TypeCases, "精密加工", "シャフト加工"},
		{document.TypeCases, "溶接", "フレーム溶接"},
		{document.TypeNews, "お知らせ", "夏季休業"},
	}
	for _, s := range seed {
		p := document.Product{Type: s.typ, Category: s.cat, Title: s.title}
		if _, err := services.SavePost(db, p, "ja"); err != nil {
			t.Fatalf("Failed to seed: %v", err)
		}
	}

	got, err := services.ListPosts(db, services.ListOptions{Type: document.TypeCases, Language: "ja"})
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Type filter: expected 2 posts, got %d", len(got))
	}

	got, _ = services.ListPosts(db, services.ListOptions{Category: "精密", Language: "ja"})
	if len(got) != 1 || got[0].Title != "シャフト加工" {
		t.Errorf("Category filter failed: %+v", got)
	}

	got, _ = services.ListPosts(db, services.ListOptions{SearchTitle: "溶接", Language: "ja"})
	if len(got) != 1 || got[0].Category != "溶接" {
		t.Errorf("Title filter failed: %+v", got)
	}

	got, _ = services.ListPosts(db, services.ListOptions{Limit: 2, Language: "ja"})
	if len(got) != 2 {
		t.Errorf("Limit: expected 2 posts, got %d", len(got))
	}
}

// TestListPostsNewestFirst verifies listing order follows updatedAt
// descending.
func TestListPostsNewestFirst(t *testing.T) {
	db := setupTestDB(t)

	first, _ := services.SavePost(db, document.Product{Type: document.TypeNews, Title: "old"}, "ja")
	second, _ := services.SavePost(db, document.Product{Type: document.TypeNews, Title: "new"}, "ja")

	// Touch the first so it becomes the most recently updated.
	db.Exec("UPDATE posts SET updatedAt = updatedAt + 1000 WHERE id = ?", first)

	got, err := services.ListPosts(db, services.ListOptions{Type: document.TypeNews, Language: "ja"})
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(got) != 2 || got[0].ID != first || got[1].ID != second {
		t.Errorf("Wrong order: %v", []int64{got[0].ID, got[1].ID})
	}
}

// TestDeletePost verifies deletion of the neutral row.
func TestDeletePost(t *testing.T) {
	db := setupTestDB(t)

	id, _ := services.SavePost(db, sampleProduct(), "ja")
	if err := services.DeletePost(db, id); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}

	if _, err := services.GetPost(db, id, "ja"); err == nil || err.Error() != "not found" {
		t.Errorf("Expected not found after delete, got %v", err)
	}
}
