package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/lumenworks/sitecms/internal/models"
	"gorm.io/gorm"
)

// SaveCategory creates a category after an advisory duplicate check on
// (type, name). The check and the insert are separate statements, so a
// concurrent writer can still slip a duplicate in; the schema carries
// no unique constraint.
func SaveCategory(db *gorm.DB, c models.Category) (int64, error) {
	var count int64
	err := db.Model(&models.Category{}).
		Where("type = ? AND name = ?", c.Type, c.Name).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, fmt.Errorf("category already exists")
	}

	now := time.Now().UnixMilli()
	if c.CreatedAt == 0 {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if err := db.Create(&c).Error; err != nil {
		return 0, err
	}
	return c.ID, nil
}

// UpdateCategory updates non-empty fields only, plus updatedAt.
func UpdateCategory(db *gorm.DB, id int64, name, categoryType string) error {
	setParts := []string{}
	args := []any{}
	if name != "" {
		setParts = append(setParts, "name = ?")
		args = append(args, name)
	}
	if categoryType != "" {
		setParts = append(setParts, "type = ?")
		args = append(args, categoryType)
	}
	setParts = append(setParts, "updatedAt = ?")
	args = append(args, time.Now().UnixMilli())
	args = append(args, id)

	sql := "UPDATE categories SET " + strings.Join(setParts, ", ") + " WHERE id = ?"
	res := db.Exec(sql, args...)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("not found")
	}
	return nil
}

// DeleteCategory removes the category row. Posts keep whatever category
// string they already carry; there is no referential tie.
func DeleteCategory(db *gorm.DB, id int64) error {
	res := db.Exec("DELETE FROM categories WHERE id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("not found")
	}
	return nil
}

// GetCategoriesByType returns the vocabulary for one post type, name
// ascending.
func GetCategoriesByType(db *gorm.DB, categoryType string) ([]models.Category, error) {
	var cats []models.Category
	err := db.Where("type = ?", categoryType).Order("name ASC").Find(&cats).Error
	return cats, err
}

// GetAllCategories returns every category grouped by type then name.
func GetAllCategories(db *gorm.DB) ([]models.Category, error) {
	var cats []models.Category
	err := db.Order("type ASC, name ASC").Find(&cats).Error
	return cats, err
}
