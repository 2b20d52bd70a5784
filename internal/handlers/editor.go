package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/lumenworks/sitecms/internal/cache"
	"github.com/lumenworks/sitecms/internal/document"
	"github.com/lumenworks/sitecms/internal/sections"
	"github.com/lumenworks/sitecms/internal/services"
	"github.com/lumenworks/sitecms/internal/utils"
	"gorm.io/gorm"
)

// EditorHandler handles the content editing session routes. Each
// session owns one in-memory Product; edits never touch storage until
// publish.
type EditorHandler struct {
	DB       *gorm.DB
	Sessions *document.Manager
	Cache    cache.Cache
}

type openRequest struct {
	ID       int64  `json:"id"`
	Language string `json:"language"`
	Type     string `json:"type"`
}

// Open handles POST /api/editor/:session/open
// @Summary Open an editing session
// @Description Load a post into a fresh session, or start an empty draft
// @Tags Editor
// @Accept json
// @Produce json
// @Param session path string true "Session key"
// @Param request body openRequest true "Post to load; id 0 starts a draft"
// @Success 200 {object} document.Product
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /editor/{session}/open [post]
func (h *EditorHandler) Open(c *fiber.Ctx) error {
	var req openRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "editorOpen")
	}
	if req.Language == "" {
		req.Language = defaultLanguage
	}

	store, _ := h.Sessions.Open(c.Params("session"))

	if req.ID > 0 {
		p, err := services.GetPost(h.DB, req.ID, req.Language)
		if err != nil {
			if err.Error() == "not found" {
				return utils.NotFoundResponse(c, fmt.Sprintf("Post '%d' not found", req.ID))
			}
			return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "editorOpen")
		}
		store.SetProduct(p)
	} else {
		draft := document.Product{Type: req.Type}
		if draft.Type == "" {
			draft.Type = document.TypeCases
		}
		store.SetProduct(draft)
	}

	return c.Status(fiber.StatusOK).JSON(store.Product())
}

// Get handles GET /api/editor/:session
// @Summary Read the session draft
// @Tags Editor
// @Produce json
// @Param session path string true "Session key"
// @Success 200 {object} document.Product
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /editor/{session} [get]
func (h *EditorHandler) Get(c *fiber.Ctx) error {
	store, ok := h.Sessions.Get(c.Params("session"))
	if !ok {
		return utils.NotFoundResponse(c, "Session not found")
	}
	return c.Status(fiber.StatusOK).JSON(store.Product())
}

// UpdateFields handles PATCH /api/editor/:session/fields
// @Summary Patch draft scalar fields
// @Description Apply a map of field name to value; unknown names are ignored
// @Tags Editor
// @Accept json
// @Produce json
// @Param session path string true "Session key"
// @Param fields body map[string]string true "Fields to set"
// @Success 200 {object} document.Product
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /editor/{session}/fields [patch]
func (h *EditorHandler) UpdateFields(c *fiber.Ctx) error {
	store, ok := h.Sessions.Get(c.Params("session"))
	if !ok {
		return utils.NotFoundResponse(c, "Session not found")
	}

	var fields map[string]string
	if err := c.BodyParser(&fields); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "editorFields")
	}
	for field, value := range fields {
		store.UpdateField(field, value)
	}

	return c.Status(fiber.StatusOK).JSON(store.Product())
}

type addSectionRequest struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// AddSection handles POST /api/editor/:session/sections
// @Summary Append a section to the draft
// @Description Create a section of the given type at the end of the list
// @Tags Editor
// @Accept json
// @Produce json
// @Param session path string true "Session key"
// @Param request body addSectionRequest true "Section type and optional initial data"
// @Success 200 {object} sections.Section
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /editor/{session}/sections [post]
func (h *EditorHandler) AddSection(c *fiber.Ctx) error {
	store, ok := h.Sessions.Get(c.Params("session"))
	if !ok {
		return utils.NotFoundResponse(c, "Session not found")
	}

	var req addSectionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "editorAddSection")
	}
	t := sections.Type(req.Type)
	if !t.Valid() {
		return utils.ErrorResponse(c, fmt.Sprintf("Unknown section type '%s'", req.Type), fiber.StatusBadRequest, "editorAddSection")
	}

	var initial sections.Data
	if len(req.Data) > 0 {
		d := sections.DefaultData(t)
		if err := json.Unmarshal(req.Data, d); err != nil {
			return utils.ErrorResponse(c, "Invalid section data", fiber.StatusBadRequest, "editorAddSection")
		}
		initial = d
	}

	sec := store.AddSection(t, initial)
	return c.Status(fiber.StatusOK).JSON(sec)
}

// RemoveSection handles DELETE /api/editor/:session/sections/:sectionId
// @Summary Remove a section from the draft
// @Tags Editor
// @Produce json
// @Param session path string true "Session key"
// @Param sectionId path string true "Section ID"
// @Success 200 {object} document.Product
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /editor/{session}/sections/{sectionId} [delete]
func (h *EditorHandler) RemoveSection(c *fiber.Ctx) error {
	store, ok := h.Sessions.Get(c.Params("session"))
	if !ok {
		return utils.NotFoundResponse(c, "Session not found")
	}
	store.RemoveSection(c.Params("sectionId"))
	return c.Status(fiber.StatusOK).JSON(store.Product())
}

type moveSectionRequest struct {
	Direction string `json:"direction"`
}

// MoveSection handles POST /api/editor/:session/sections/:sectionId/move
// @Summary Move a section one step up or down
// @Description Boundary moves are silent no-ops
// @Tags Editor
// @Accept json
// @Produce json
// @Param session path string true "Session key"
// @Param sectionId path string true "Section ID"
// @Param request body moveSectionRequest true "Direction: up or down"
// @Success 200 {object} document.Product
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /editor/{session}/sections/{sectionId}/move [post]
func (h *EditorHandler) MoveSection(c *fiber.Ctx) error {
	store, ok := h.Sessions.Get(c.Params("session"))
	if !ok {
		return utils.NotFoundResponse(c, "Session not found")
	}

	var req moveSectionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "editorMoveSection")
	}

	id := c.Params("sectionId")
	switch req.Direction {
	case "up":
		store.MoveSectionUp(id)
	case "down":
		store.MoveSectionDown(id)
	default:
		return utils.ErrorResponse(c, fmt.Sprintf("Unknown direction '%s'", req.Direction), fiber.StatusBadRequest, "editorMoveSection")
	}

	return c.Status(fiber.StatusOK).JSON(store.Product())
}

// UpdateSection handles PATCH /api/editor/:session/sections/:sectionId
// @Summary Patch a section's payload
// @Description Shallow-merge a partial payload; the section's variant never changes
// @Tags Editor
// @Accept json
// @Produce json
// @Param session path string true "Session key"
// @Param sectionId path string true "Section ID"
// @Param partial body map[string]interface{} true "Partial payload"
// @Success 200 {object} sections.Section
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /editor/{session}/sections/{sectionId} [patch]
func (h *EditorHandler) UpdateSection(c *fiber.Ctx) error {
	store, ok := h.Sessions.Get(c.Params("session"))
	if !ok {
		return utils.NotFoundResponse(c, "Session not found")
	}

	id := c.Params("sectionId")
	sec, ok := store.Section(id)
	if !ok {
		return utils.NotFoundResponse(c, fmt.Sprintf("Section '%s' not found", id))
	}

	if err := h.applySectionPatch(store, sec, c.Body()); err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "editorUpdateSection")
	}

	sec, _ = store.Section(id)
	return c.Status(fiber.StatusOK).JSON(sec)
}

// applySectionPatch decodes the body into the patch type matching the
// section's variant and applies it through the variant-scoped store
// operation, so a patch can never cross into another variant's shape.
func (h *EditorHandler) applySectionPatch(store *document.Store, sec sections.Section, body []byte) error {
	switch sec.Type {
	case sections.TypeGallery:
		var p sections.GalleryPatch
		if err := json.Unmarshal(body, &p); err != nil {
			return fmt.Errorf("invalid gallery patch: %w", err)
		}
		store.UpdateGalleryData(sec.ID, p)
	case sections.TypeNormal:
		var p sections.NormalPatch
		if err := json.Unmarshal(body, &p); err != nil {
			return fmt.Errorf("invalid normal patch: %w", err)
		}
		store.UpdateNormalData(sec.ID, p)
	case sections.TypeTextContent:
		var p sections.TextContentPatch
		if err := json.Unmarshal(body, &p); err != nil {
			return fmt.Errorf("invalid text-content patch: %w", err)
		}
		store.UpdateTextContentData(sec.ID, p)
	case sections.TypeVideo:
		var p sections.VideoPatch
		if err := json.Unmarshal(body, &p); err != nil {
			return fmt.Errorf("invalid video patch: %w", err)
		}
		store.UpdateVideoData(sec.ID, p)
	case sections.TypeRichText:
		var p sections.RichTextPatch
		if err := json.Unmarshal(body, &p); err != nil {
			return fmt.Errorf("invalid rich-text patch: %w", err)
		}
		store.UpdateRichTextData(sec.ID, p)
	case sections.TypeLinks:
		var p sections.LinksPatch
		if err := json.Unmarshal(body, &p); err != nil {
			return fmt.Errorf("invalid links patch: %w", err)
		}
		store.UpdateLinksData(sec.ID, p)
	default:
		var partial map[string]any
		if err := json.Unmarshal(body, &partial); err != nil {
			return fmt.Errorf("invalid patch: %w", err)
		}
		store.UpdateSection(sec.ID, partial)
	}
	return nil
}

type publishRequest struct {
	Language string `json:"language"`
}

// Publish handles POST /api/editor/:session/publish
// @Summary Persist the session draft
// @Description Save the draft through the persistence mapper for one language
// @Tags Editor
// @Accept json
// @Produce json
// @Param session path string true "Session key"
// @Param request body publishRequest true "Target language"
// @Success 200 {object} utils.SavedResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /editor/{session}/publish [post]
func (h *EditorHandler) Publish(c *fiber.Ctx) error {
	store, ok := h.Sessions.Get(c.Params("session"))
	if !ok {
		return utils.NotFoundResponse(c, "Session not found")
	}

	var req publishRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "editorPublish")
	}
	if req.Language == "" {
		req.Language = defaultLanguage
	}

	p := store.Product()
	id, err := services.SavePost(h.DB, p, req.Language)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "editorPublish")
	}

	// A draft that just got its id keeps editing the persisted post.
	if p.ID == 0 {
		p.ID = id
		store.SetProduct(p)
	}

	h.Cache.InvalidatePrefix(c.Context(), "posts:")
	return utils.SavedResponse(c, id)
}

// Discard handles DELETE /api/editor/:session
// @Summary Discard the session
// @Description Drop the draft and every unpublished edit
// @Tags Editor
// @Produce json
// @Param session path string true "Session key"
// @Success 200 {object} utils.SavedResponseStruct
// @Router /editor/{session} [delete]
func (h *EditorHandler) Discard(c *fiber.Ctx) error {
	h.Sessions.Discard(c.Params("session"))
	return utils.OkResponse(c)
}
