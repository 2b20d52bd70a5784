// Package reorder implements the display-order subsystem for posts:
// durable order persistence plus a debounced, optimistic in-memory
// manager that batches rapid reorderings into single writes.
package reorder

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// ReorderPosts writes 1-based display positions for the given ids in a
// single statement, scoped to one post type. Ids not belonging to that
// type are silently unaffected by the WHERE clause. An empty id list is
// a no-op.
func ReorderPosts(db *gorm.DB, postIDs []int64, postType string) error {
	if len(postIDs) == 0 {
		return nil
	}

	var b strings.Builder
	args := make([]any, 0, len(postIDs)*2+3)
	b.WriteString("UPDATE posts SET display_order = CASE id")
	for i, id := range postIDs {
		b.WriteString(" WHEN ? THEN ?")
		args = append(args, id, i+1)
	}
	b.WriteString(" END, updatedAt = ? WHERE id IN (?) AND type = ?")
	args = append(args, time.Now().UnixMilli(), postIDs, postType)

	return db.Exec(b.String(), args...).Error
}

// GetPostOrder returns the ids of one post type in display order.
// Posts sharing a display_order value (e.g. the unseeded default 0)
// tie-break newest first.
func GetPostOrder(db *gorm.DB, postType string) ([]int64, error) {
	var ids []int64
	err := db.Raw(
		"SELECT id FROM posts WHERE type = ? ORDER BY display_order ASC, updatedAt DESC",
		postType,
	).Scan(&ids).Error
	return ids, err
}
