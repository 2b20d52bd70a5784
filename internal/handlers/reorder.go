package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/lumenworks/sitecms/internal/cache"
	"github.com/lumenworks/sitecms/internal/reorder"
	"github.com/lumenworks/sitecms/internal/types"
	"github.com/lumenworks/sitecms/internal/utils"
	"gorm.io/gorm"
)

// ReorderHandler handles the display-order routes for posts
type ReorderHandler struct {
	DB       *gorm.DB
	Registry *reorder.Registry
	Cache    cache.Cache
}

// managerFor returns the per-type manager. The server snapshot is
// refetched whenever no local edit is pending, so posts created or
// deleted since the last visit show up and the rollback target stays
// current. Pending edits are never clobbered by a refetch.
func (h *ReorderHandler) managerFor(postType string) (*reorder.Manager, error) {
	m, _ := h.Registry.ForType(postType)
	if !m.HasUnsavedChanges() {
		ids, err := reorder.GetPostOrder(h.DB, postType)
		if err != nil {
			return nil, err
		}
		m.SetServerOrder(ids)
	}
	return m, nil
}

// GetOrder handles GET /api/posts/:type/order
// @Summary Get display order
// @Description Return the current (possibly not yet persisted) order of post ids for one type
// @Tags Reorder
// @Produce json
// @Param type path string true "Post type (cases, news, equipments)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /posts/{type}/order [get]
func (h *ReorderHandler) GetOrder(c *fiber.Ctx) error {
	postType := c.Params("type")
	if !validPostType(postType) {
		return utils.ErrorResponse(c, fmt.Sprintf("Unknown post type '%s'", postType), fiber.StatusBadRequest, "getOrder")
	}

	m, err := h.managerFor(postType)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getOrder")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"type":    postType,
		"order":   m.Order(),
		"unsaved": m.HasUnsavedChanges(),
	})
}

type setOrderRequest struct {
	Order types.FlexList[types.FlexInt64] `json:"order"`
}

// SetOrder handles PUT /api/posts/:type/order
// @Summary Set display order
// @Description Apply a full reordering; persistence is debounced and rolls back on failure
// @Tags Reorder
// @Accept json
// @Produce json
// @Param type path string true "Post type (cases, news, equipments)"
// @Param request body setOrderRequest true "Post ids in display order"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /posts/{type}/order [put]
func (h *ReorderHandler) SetOrder(c *fiber.Ctx) error {
	postType := c.Params("type")
	if !validPostType(postType) {
		return utils.ErrorResponse(c, fmt.Sprintf("Unknown post type '%s'", postType), fiber.StatusBadRequest, "setOrder")
	}

	var req setOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "setOrder")
	}

	m, err := h.managerFor(postType)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "setOrder")
	}
	m.SetOrder(types.Int64Slice(req.Order.Slice()))

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"type":    postType,
		"order":   m.Order(),
		"unsaved": m.HasUnsavedChanges(),
	})
}

// FlushOrder handles POST /api/posts/:type/order/flush
// @Summary Flush display order
// @Description Persist any pending reordering immediately
// @Tags Reorder
// @Produce json
// @Param type path string true "Post type (cases, news, equipments)"
// @Success 200 {object} utils.SavedResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /posts/{type}/order/flush [post]
func (h *ReorderHandler) FlushOrder(c *fiber.Ctx) error {
	postType := c.Params("type")
	if !validPostType(postType) {
		return utils.ErrorResponse(c, fmt.Sprintf("Unknown post type '%s'", postType), fiber.StatusBadRequest, "flushOrder")
	}

	m, err := h.managerFor(postType)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "flushOrder")
	}
	if err := m.Flush(c.Context()); err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "flushOrder")
	}

	h.Cache.InvalidatePrefix(c.Context(), "posts:")
	return utils.OkResponse(c)
}
