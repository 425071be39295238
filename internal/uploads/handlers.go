package uploads

import (
	"errors"
	"io"
	"strconv"

	"vms-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles upload handlers with the service.
type Handlers struct {
	Service *Service
}

// UploadVisitorImage POST /api/v1/uploads/visitor-image/:tempKey/:slot
func (h *Handlers) UploadVisitorImage(c *fiber.Ctx) error {
	tempKey := c.Params("tempKey")
	slot, err := strconv.Atoi(c.Params("slot"))
	if err != nil || tempKey == "" {
		return response.Error(c, "Invalid upload target", 400, nil)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, ErrEmptyFile.Error(), 400, nil)
	}

	f, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, "Failed to read upload", 400, nil)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return response.Error(c, "Failed to read upload", 400, nil)
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	filePath, err := h.Service.UploadVisitorImage(c.Context(), tempKey, slot, fileHeader.Filename, contentType, data)
	if err != nil {
		if errors.Is(err, ErrEmptyFile) {
			return response.Error(c, err.Error(), 400, nil)
		}
		return response.Error(c, "Failed to store file", 500, nil)
	}

	return response.Success(c, "File uploaded", fiber.Map{"filePath": filePath}, nil)
}

// FetchBlob GET /api/v1/uploads/blob?filePath=
func (h *Handlers) FetchBlob(c *fiber.Ctx) error {
	filePath := c.Query("filePath")
	if filePath == "" {
		return response.Error(c, "filePath is required", 400, nil)
	}

	data, contentType, err := h.Service.FetchBlob(c.Context(), filePath)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			return response.Error(c, ErrBlobNotFound.Error(), 404, nil)
		}
		return response.Error(c, "Failed to fetch file", 500, nil)
	}

	if contentType != "" {
		c.Set("Content-Type", contentType)
	}
	return c.Send(data)
}
