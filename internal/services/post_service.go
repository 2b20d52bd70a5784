package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/lumenworks/sitecms/internal/document"
	"github.com/lumenworks/sitecms/internal/models"
	"github.com/lumenworks/sitecms/internal/sections"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// The mapper splits the Product aggregate across the posts table
// (language-neutral fields) and the post_translations table (one row
// per language). The two writes are deliberately NOT wrapped in a
// transaction, and at-most-one translation per (post_id, language_code)
// is enforced by a check-then-write instead of a constraint. Both are
// documented legacy behaviors of the system this replaces, acceptable
// for a single-admin editorial workload.

// ListOptions filters and bounds a post listing.
type ListOptions struct {
	Type        string
	Category    string
	SearchTitle string
	Sort        string // only "latest" exists; empty means the same
	Limit       int
	Language    string
}

// postRow is the scan target of the LEFT JOIN between posts and
// post_translations. Translation fields are pointers so an absent
// translation resolves to empty strings, never an error.
type postRow struct {
	ID              int64   `gorm:"column:id"`
	Type            string  `gorm:"column:type"`
	Thumbnail       string  `gorm:"column:thumbnail"`
	OGImage         string  `gorm:"column:ogImage"`
	OGTwitter       string  `gorm:"column:ogTwitter"`
	Date            string  `gorm:"column:date"`
	CreatedAt       int64   `gorm:"column:createdAt"`
	UpdatedAt       int64   `gorm:"column:updatedAt"`
	Category        *string `gorm:"column:category"`
	Title           *string `gorm:"column:title"`
	CardDescription *string `gorm:"column:cardDescription"`
	Sections        []byte  `gorm:"column:sections"`
	MetaTitle       *string `gorm:"column:metaTitle"`
	MetaKeywords    *string `gorm:"column:metaKeywords"`
	MetaDescription *string `gorm:"column:metaDescription"`
}

const postSelectColumns = `p.id, p.type, p.thumbnail, p.ogImage, p.ogTwitter, p.date, p.createdAt, p.updatedAt,
pt.category, pt.title, pt.cardDescription, pt.sections, pt.metaTitle, pt.metaKeywords, pt.metaDescription`

// SavePost persists the aggregate for one language and returns the
// (possibly newly assigned) post id.
//
// Existing posts: the neutral row is updated with truthy fields only
// (an empty value never clears a stored one), then the translation row
// is updated or inserted by existence check, again filtering empty
// fields. New posts: the neutral row is inserted first, then exactly
// one translation row. A failure between the two writes leaves the
// aggregate split-inconsistent in storage; there is no repair pass.
func SavePost(db *gorm.DB, p document.Product, language string) (int64, error) {
	now := time.Now().UnixMilli()

	sectionsJSON, err := sections.EncodeList(p.Sections)
	if err != nil {
		return 0, fmt.Errorf("encode sections: %w", err)
	}

	if p.ID > 0 {
		if err := updateNeutralRow(db, p, now); err != nil {
			return 0, err
		}
		if err := upsertTranslation(db, p, language, sectionsJSON, now); err != nil {
			return 0, err
		}
		return p.ID, nil
	}

	post := models.Post{
		Type:      orDefault(p.Type, document.TypeCases),
		Thumbnail: p.Thumbnail,
		OGImage:   p.OGImage,
		OGTwitter: p.OGTwitter,
		Date:      p.Date,
		CreatedAt: orDefaultInt(p.CreatedAt, now),
		UpdatedAt: now,
	}
	if err := db.Create(&post).Error; err != nil {
		return 0, err
	}

	if err := insertTranslation(db, post.ID, p, language, sectionsJSON, now, now); err != nil {
		return 0, err
	}
	return post.ID, nil
}

// updateNeutralRow updates the posts row including only truthy fields.
func updateNeutralRow(db *gorm.DB, p document.Product, now int64) error {
	setParts := []string{}
	args := []any{}
	appendSet := func(column, value string) {
		if value != "" {
			setParts = append(setParts, column+" = ?")
			args = append(args, value)
		}
	}
	appendSet("type", p.Type)
	appendSet("thumbnail", p.Thumbnail)
	appendSet("ogImage", p.OGImage)
	appendSet("ogTwitter", p.OGTwitter)
	appendSet("date", p.Date)
	setParts = append(setParts, "updatedAt = ?")
	args = append(args, now)
	args = append(args, p.ID)

	sql := "UPDATE posts SET " + strings.Join(setParts, ", ") + " WHERE id = ?"
	return db.Exec(sql, args...).Error
}

// upsertTranslation updates the (post_id, language) row when one
// exists, otherwise inserts one. The existence check and the write are
// two separate statements.
func upsertTranslation(db *gorm.DB, p document.Product, language string, sectionsJSON []byte, now int64) error {
	var ids []int64
	if err := db.Raw(
		"SELECT id FROM post_translations WHERE post_id = ? AND language_code = ?",
		p.ID, language,
	).Scan(&ids).Error; err != nil {
		return err
	}

	if len(ids) > 0 {
		setParts := []string{}
		args := []any{}
		appendSet := func(column, value string) {
			if value != "" {
				setParts = append(setParts, column+" = ?")
				args = append(args, value)
			}
		}
		appendSet("category", p.Category)
		appendSet("title", p.Title)
		appendSet("cardDescription", p.CardDescription)
		appendSet("metaTitle", p.MetaTitle)
		appendSet("metaKeywords", p.MetaKeywords)
		appendSet("metaDescription", p.MetaDescription)
		setParts = append(setParts, "sections = ?")
		args = append(args, string(sectionsJSON))
		setParts = append(setParts, "updatedAt = ?")
		args = append(args, now)
		args = append(args, p.ID, language)

		sql := "UPDATE post_translations SET " + strings.Join(setParts, ", ") +
			" WHERE post_id = ? AND language_code = ?"
		return db.Exec(sql, args...).Error
	}

	return insertTranslation(db, p.ID, p, language, sectionsJSON, now, now)
}

// insertTranslation inserts a translation row carrying only non-empty
// fields plus the mandatory columns.
func insertTranslation(db *gorm.DB, postID int64, p document.Product, language string, sectionsJSON []byte, createdAt, updatedAt int64) error {
	columns := []string{"post_id", "language_code"}
	args := []any{postID, language}
	appendCol := func(column, value string) {
		if value != "" {
			columns = append(columns, column)
			args = append(args, value)
		}
	}
	appendCol("category", p.Category)
	appendCol("title", p.Title)
	appendCol("cardDescription", p.CardDescription)
	appendCol("metaTitle", p.MetaTitle)
	appendCol("metaKeywords", p.MetaKeywords)
	appendCol("metaDescription", p.MetaDescription)
	columns = append(columns, "sections", "createdAt", "updatedAt")
	args = append(args, string(sectionsJSON), createdAt, updatedAt)

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	sql := "INSERT INTO post_translations (" + strings.Join(columns, ", ") + ") VALUES (" + placeholders + ")"
	return db.Exec(sql, args...).Error
}

// GetPost reconstructs the aggregate for one language. Missing
// translation fields resolve to empty strings; a malformed sections
// blob resolves to an empty section list.
func GetPost(db *gorm.DB, id int64, language string) (document.Product, error) {
	var rows []postRow
	err := db.Raw(
		"SELECT "+postSelectColumns+
			" FROM posts p LEFT JOIN post_translations pt ON p.id = pt.post_id AND pt.language_code = ?"+
			" WHERE p.id = ?",
		language, id,
	).Scan(&rows).Error
	if err != nil {
		return document.Product{}, err
	}
	if len(rows) == 0 {
		return document.Product{}, fmt.Errorf("not found")
	}
	return rowToProduct(rows[0]), nil
}

// ListPosts returns aggregates matching the filters, newest first.
// Predicates are applied in a fixed order: type, category substring,
// title substring.
func ListPosts(db *gorm.DB, opts ListOptions) ([]document.Product, error) {
	q := db.Table("posts p").
		Select(postSelectColumns).
		Joins("LEFT JOIN post_translations pt ON p.id = pt.post_id AND pt.language_code = ?", opts.Language)

	// The composite index only helps the MySQL planner; other dialects
	// reject USE INDEX.
	if opts.Type != "" && db.Dialector.Name() == "mysql" {
		q = q.Clauses(hints.UseIndex("idx_posts_type_order"))
	}

	if opts.Type != "" {
		q = q.Where("p.type = ?", opts.Type)
	}
	if opts.Category != "" {
		q = q.Where("pt.category LIKE ?", "%"+opts.Category+"%")
	}
	if opts.SearchTitle != "" {
		q = q.Where("pt.title LIKE ?", "%"+opts.SearchTitle+"%")
	}

	// "latest" is the only sort mode; anything else falls through to it.
	q = q.Order("p.updatedAt DESC")

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	var rows []postRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	products := make([]document.Product, len(rows))
	for i, r := range rows {
		products[i] = rowToProduct(r)
	}
	return products, nil
}

// DeletePost removes the neutral row. Translation rows are expected to
// go with it via the schema's ON DELETE CASCADE; the application does
// not verify that.
func DeletePost(db *gorm.DB, id int64) error {
	return db.Exec("DELETE FROM posts WHERE id = ?", id).Error
}

func rowToProduct(r postRow) document.Product {
	return document.Product{
		ID:              r.ID,
		Type:            orDefault(r.Type, document.TypeCases),
		Category:        deref(r.Category),
		Thumbnail:       r.Thumbnail,
		OGImage:         r.OGImage,
		OGTwitter:       r.OGTwitter,
		Date:            r.Date,
		Title:           deref(r.Title),
		CardDescription: deref(r.CardDescription),
		MetaTitle:       deref(r.MetaTitle),
		MetaKeywords:    deref(r.MetaKeywords),
		MetaDescription: deref(r.MetaDescription),
		Sections:        sections.DecodeList(r.Sections),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orDefaultInt(v, def int64) int64 {
	if v == 0 {
		return def
	}
	return v
}
