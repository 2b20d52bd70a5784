package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lumenworks/sitecms/internal/storage"
	"github.com/lumenworks/sitecms/internal/utils"
)

// UploadHandler handles media upload and deletion routes
type UploadHandler struct {
	Store storage.Store
}

// Upload handles POST /api/upload
// @Summary Upload a media file
// @Description Store an image or video and return its public URL
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Param kind formData string false "Media kind: image (default) or video"
// @Param path formData string false "Subdirectory for the stored file"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /upload [post]
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, "File is required", fiber.StatusBadRequest, "upload")
	}

	kind := storage.Kind(c.FormValue("kind", string(storage.KindImage)))
	if kind != storage.KindImage && kind != storage.KindVideo {
		return utils.ErrorResponse(c, "Kind must be image or video", fiber.StatusBadRequest, "upload")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "upload")
	}
	defer f.Close()

	url, err := h.Store.Upload(c.Context(), fileHeader.Filename, f, kind, c.FormValue("path"))
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "upload")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":  true,
		"url": url,
	})
}

type deleteUploadRequest struct {
	URL string `json:"url"`
}

// Delete handles DELETE /api/upload
// @Summary Delete a media file
// @Description Remove a previously uploaded file by its URL
// @Tags Upload
// @Accept json
// @Produce json
// @Param request body deleteUploadRequest true "URL of the file to delete"
// @Success 200 {object} utils.SavedResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /upload [delete]
func (h *UploadHandler) Delete(c *fiber.Ctx) error {
	var req deleteUploadRequest
	if err := c.BodyParser(&req); err != nil || req.URL == "" {
		return utils.ErrorResponse(c, "URL is required", fiber.StatusBadRequest, "deleteUpload")
	}

	if err := h.Store.Delete(c.Context(), req.URL); err != nil {
		if err.Error() == "not found" {
			return utils.NotFoundResponse(c, "File not found")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "deleteUpload")
	}
	return utils.OkResponse(c)
}
