// Package document holds the in-memory Product aggregate behind the
// content editor and the store that owns and mutates it.
package document

import (
	"github.com/lumenworks/sitecms/internal/sections"
)

// Post types partition the content space; a post's type never changes
// after creation.
const (
	TypeCases      = "cases"
	TypeNews       = "news"
	TypeEquipments = "equipments"
)

// ValidPostType reports whether t is a known post type.
func ValidPostType(t string) bool {
	return t == TypeCases || t == TypeNews || t == TypeEquipments
}

// Product is the aggregate a single editor session works on. Language
// fields (Title, CardDescription, Meta*) carry exactly one language at
// a time; the persistence mapper splits the aggregate across the
// posts and post_translations tables. Timestamps are epoch ms.
type Product struct {
	ID   int64  `json:"id,omitempty"`
	Type string `json:"type"`

	// Comma-separated tag string, a legacy denormalized multi-value field.
	Category string `json:"category"`

	Thumbnail string `json:"thumbnail"`
	OGImage   string `json:"ogImage"`
	OGTwitter string `json:"ogTwitter"`
	Date      string `json:"date"`

	Title           string `json:"title"`
	CardDescription string `json:"cardDescription"`
	MetaTitle       string `json:"metaTitle"`
	MetaKeywords    string `json:"metaKeywords"`
	MetaDescription string `json:"metaDescription"`

	Sections []sections.Section `json:"sections"`

	CreatedAt int64 `json:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt,omitempty"`
}

// Clone returns a deep copy of the product.
func (p Product) Clone() Product {
	c := p
	c.Sections = make([]sections.Section, len(p.Sections))
	for i, s := range p.Sections {
		c.Sections[i] = s.Clone()
	}
	return c
}
