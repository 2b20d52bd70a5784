package handlers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lumenworks/sitecms/internal/cache"
	"github.com/lumenworks/sitecms/internal/document"
	"github.com/lumenworks/sitecms/internal/services"
	"github.com/lumenworks/sitecms/internal/utils"
	"gorm.io/gorm"
)

// listCacheTTL bounds staleness of cached listings between writes.
const listCacheTTL = 60 * time.Second

// PostsHandler handles post CRUD and listing routes
type PostsHandler struct {
	DB    *gorm.DB
	Cache cache.Cache
}

// ListPosts handles GET /api/posts
// @Summary List posts
// @Description List posts filtered by type, category and title, newest first
// @Tags Posts
// @Produce json
// @Param type query string false "Post type (cases, news, equipments)"
// @Param category query string false "Category substring filter"
// @Param searchTitle query string false "Title substring filter"
// @Param sort query string false "Sort mode (latest)"
// @Param limit query int false "Maximum rows"
// @Param language query string false "Language code (default ja)"
// @Success 200 {array} document.Product
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /posts [get]
func (h *PostsHandler) ListPosts(c *fiber.Ctx) error {
	opts := services.ListOptions{
		Type:        c.Query("type"),
		Category:    c.Query("category"),
		SearchTitle: c.Query("searchTitle"),
		Sort:        c.Query("sort"),
		Limit:       parseLimit(c),
		Language:    parseLanguage(c),
	}

	key := fmt.Sprintf("posts:list:%s:%s:%s:%s:%d:%s",
		opts.Type, opts.Category, opts.SearchTitle, opts.Sort, opts.Limit, opts.Language)
	if cached, ok := h.Cache.Get(c.Context(), key); ok {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Status(fiber.StatusOK).Send(cached)
	}

	posts, err := services.ListPosts(h.DB, opts)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "listPosts")
	}

	if blob, err := json.Marshal(posts); err == nil {
		h.Cache.Set(c.Context(), key, blob, listCacheTTL)
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post
// @Description Get one post with its translation for the requested language
// @Tags Posts
// @Produce json
// @Param id path int true "Post ID"
// @Param language query string false "Language code (default ja)"
// @Success 200 {object} document.Product
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /posts/{id} [get]
func (h *PostsHandler) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, "Invalid post id", fiber.StatusBadRequest, "getPost")
	}

	post, err := services.GetPost(h.DB, id, parseLanguage(c))
	if err != nil {
		if err.Error() == "not found" {
			return utils.NotFoundResponse(c, fmt.Sprintf("Post '%d' not found", id))
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getPost")
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

// SavePost handles POST /api/posts
// @Summary Create or update a post
// @Description Persist a post and its translation for one language
// @Tags Posts
// @Accept json
// @Produce json
// @Param post body document.Product true "Post payload"
// @Param language query string false "Language code (default ja)"
// @Success 200 {object} utils.SavedResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /posts [post]
func (h *PostsHandler) SavePost(c *fiber.Ctx) error {
	var p document.Product
	if err := c.BodyParser(&p); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "savePost")
	}
	if p.Type != "" && !validPostType(p.Type) {
		return utils.ErrorResponse(c, fmt.Sprintf("Unknown post type '%s'", p.Type), fiber.StatusBadRequest, "savePost")
	}

	id, err := services.SavePost(h.DB, p, parseLanguage(c))
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "savePost")
	}

	h.Cache.InvalidatePrefix(c.Context(), "posts:")
	return utils.SavedResponse(c, id)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post
// @Description Delete a post; translations go with it via cascade
// @Tags Posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} utils.SavedResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /posts/{id} [delete]
func (h *PostsHandler) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, "Invalid post id", fiber.StatusBadRequest, "deletePost")
	}

	if err := services.DeletePost(h.DB, id); err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "deletePost")
	}

	h.Cache.InvalidatePrefix(c.Context(), "posts:")
	return utils.SavedResponse(c, id)
}
