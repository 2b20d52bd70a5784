package models

// Post holds the language-neutral fields of a post. Column names match
// the legacy D1 schema the admin UI was built against, so the camelCase
// columns are intentional.
type Post struct {
	ID           int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Type         string `gorm:"column:type;size:32;index:idx_posts_type_order,priority:1" json:"type"`
	Thumbnail    string `gorm:"column:thumbnail" json:"thumbnail"`
	OGImage      string `gorm:"column:ogImage" json:"ogImage"`
	OGTwitter    string `gorm:"column:ogTwitter" json:"ogTwitter"`
	Date         string `gorm:"column:date;size:32" json:"date"`
	DisplayOrder int    `gorm:"column:display_order;default:0;index:idx_posts_display_order;index:idx_posts_type_order,priority:2" json:"display_order"`
	CreatedAt    int64  `gorm:"column:createdAt;autoCreateTime:milli" json:"createdAt"`
	UpdatedAt    int64  `gorm:"column:updatedAt;autoUpdateTime:milli" json:"updatedAt"`

	Translations []PostTranslation `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

// PostTranslation holds the per-language fields of a post.
// There is deliberately NO unique index on (post_id, language_code):
// at-most-one row per pair is enforced by the mapper's existence check
// only, matching the legacy schema.
type PostTranslation struct {
	ID              int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PostID          int64  `gorm:"column:post_id;not null;index:idx_post_translations_post_lang,priority:1" json:"post_id"`
	LanguageCode    string `gorm:"column:language_code;size:8;index:idx_post_translations_post_lang,priority:2" json:"language_code"`
	Category        string `gorm:"column:category" json:"category"`
	Title           string `gorm:"column:title" json:"title"`
	CardDescription string `gorm:"column:cardDescription" json:"cardDescription"`
	Sections        JSON   `gorm:"column:sections" json:"sections"`
	MetaTitle       string `gorm:"column:metaTitle" json:"metaTitle"`
	MetaKeywords    string `gorm:"column:metaKeywords" json:"metaKeywords"`
	MetaDescription string `gorm:"column:metaDescription" json:"metaDescription"`
	CreatedAt       int64  `gorm:"column:createdAt;autoCreateTime:milli" json:"createdAt"`
	UpdatedAt       int64  `gorm:"column:updatedAt;autoUpdateTime:milli" json:"updatedAt"`
}

// Category is one entry of the per-type tagging vocabulary.
// Uniqueness of (type, name) is advisory, checked by the
// service before insert, never by the database.
type Category struct {
	ID        int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string `gorm:"column:name;size:256;not null" json:"name"`
	Type      string `gorm:"column:type;size:32;not null;index:idx_categories_type" json:"type"`
	CreatedAt int64  `gorm:"column:createdAt;autoCreateTime:milli" json:"createdAt"`
	UpdatedAt int64  `gorm:"column:updatedAt;autoUpdateTime:milli" json:"updatedAt"`
}

// TableName overrides the table name for Post
func (Post) TableName() string {
	return "posts"
}

// TableName overrides the table name for PostTranslation
func (PostTranslation) TableName() string {
	return "post_translations"
}

// TableName overrides the table name for Category
func (Category) TableName() string {
	return "categories"
}
