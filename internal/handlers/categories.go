package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/lumenworks/sitecms/internal/models"
	"github.com/lumenworks/sitecms/internal/services"
	"github.com/lumenworks/sitecms/internal/utils"
	"gorm.io/gorm"
)

// CategoriesHandler handles the per-type category vocabulary routes
type CategoriesHandler struct {
	DB *gorm.DB
}

type categoryRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ListCategories handles GET /api/categories
// @Summary List categories
// @Description List the category vocabulary, optionally for one post type
// @Tags Categories
// @Produce json
// @Param type query string false "Post type (cases, news, equipments)"
// @Success 200 {array} models.Category
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /categories [get]
func (h *CategoriesHandler) ListCategories(c *fiber.Ctx) error {
	var (
		cats []models.Category
		err  error
	)
	if t := c.Query("type"); t != "" {
		cats, err = services.GetCategoriesByType(h.DB, t)
	} else {
		cats, err = services.GetAllCategories(h.DB)
	}
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "listCategories")
	}
	return c.Status(fiber.StatusOK).JSON(cats)
}

// CreateCategory handles POST /api/categories
// @Summary Create a category
// @Description Add a category to one post type's vocabulary
// @Tags Categories
// @Accept json
// @Produce json
// @Param category body categoryRequest true "Category name and type"
// @Success 200 {object} utils.SavedResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /categories [post]
func (h *CategoriesHandler) CreateCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "createCategory")
	}
	if req.Name == "" {
		return utils.ErrorResponse(c, "Category name is required", fiber.StatusBadRequest, "createCategory")
	}
	if !validPostType(req.Type) {
		return utils.ErrorResponse(c, fmt.Sprintf("Unknown post type '%s'", req.Type), fiber.StatusBadRequest, "createCategory")
	}

	id, err := services.SaveCategory(h.DB, models.Category{Name: req.Name, Type: req.Type})
	if err != nil {
		if err.Error() == "category already exists" {
			return utils.ErrorResponse(c, err.Error(), fiber.StatusConflict, "createCategory")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "createCategory")
	}
	return utils.SavedResponse(c, id)
}

// UpdateCategory handles PUT /api/categories/:id
// @Summary Update a category
// @Description Update non-empty fields of a category
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param category body categoryRequest true "Fields to update"
// @Success 200 {object} utils.SavedResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /categories/{id} [put]
func (h *CategoriesHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, "Invalid category id", fiber.StatusBadRequest, "updateCategory")
	}

	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "updateCategory")
	}
	if req.Type != "" && !validPostType(req.Type) {
		return utils.ErrorResponse(c, fmt.Sprintf("Unknown post type '%s'", req.Type), fiber.StatusBadRequest, "updateCategory")
	}

	if err := services.UpdateCategory(h.DB, id, req.Name, req.Type); err != nil {
		if err.Error() == "not found" {
			return utils.NotFoundResponse(c, fmt.Sprintf("Category '%d' not found", id))
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "updateCategory")
	}
	return utils.SavedResponse(c, id)
}

// DeleteCategory handles DELETE /api/categories/:id
// @Summary Delete a category
// @Description Remove a category; posts keep the category strings they carry
// @Tags Categories
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} utils.SavedResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /categories/{id} [delete]
func (h *CategoriesHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, "Invalid category id", fiber.StatusBadRequest, "deleteCategory")
	}

	if err := services.DeleteCategory(h.DB, id); err != nil {
		if err.Error() == "not found" {
			return utils.NotFoundResponse(c, fmt.Sprintf("Category '%d' not found", id))
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "deleteCategory")
	}
	return utils.SavedResponse(c, id)
}
