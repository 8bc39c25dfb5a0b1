package handlers

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/csv-manager/internal/api/dto"
	"github.com/spec-kit/csv-manager/internal/auth"
	"github.com/spec-kit/csv-manager/internal/service"
	apperrors "github.com/spec-kit/csv-manager/pkg/util"
)

// CSVHandler exposes CSV file endpoints.
type CSVHandler struct {
	csv *service.CSVService
}

// NewCSVHandler constructs handler.
func NewCSVHandler(csvService *service.CSVService) *CSVHandler {
	return &CSVHandler{csv: csvService}
}

// Upload handles POST /api/v1/csv/upload (admin only, multipart).
func (h *CSVHandler) Upload(c *fiber.Ctx) error {
	uploader, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewBadRequest("multipart field 'file' required")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewBadRequest("failed to read uploaded file")
	}
	defer src.Close()

	file, err := h.csv.Upload(c.UserContext(), uploader, fileHeader.Filename, fileHeader.Size, src)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.NewCSVFileResponse(file))
}

// List handles GET /api/v1/csv/list.
func (h *CSVHandler) List(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 100)

	files, err := h.csv.List(c.UserContext(), skip, limit)
	if err != nil {
		return err
	}

	resp := make([]dto.CSVFileResponse, 0, len(files))
	for i := range files {
		resp = append(resp, dto.NewCSVFileResponse(&files[i]))
	}
	return c.JSON(resp)
}

// View handles GET /api/v1/csv/:id/view.
func (h *CSVHandler) View(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	maxRows := c.QueryInt("max_rows", 100)
	if maxRows < 1 {
		maxRows = 1
	}
	if maxRows > 1000 {
		maxRows = 1000
	}

	view, err := h.csv.View(c.UserContext(), id, maxRows)
	if err != nil {
		return err
	}

	return c.JSON(dto.CSVViewResponse{
		Filename:      view.Filename,
		Headers:       view.Headers,
		Rows:          view.Rows,
		TotalRows:     view.TotalRows,
		DisplayedRows: len(view.Rows),
	})
}

// Download handles GET /api/v1/csv/:id/download.
func (h *CSVHandler) Download(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	file, src, err := h.csv.Download(c.UserContext(), id)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Filename))
	return c.SendStream(src, int(file.FileSize))
}

// Delete handles DELETE /api/v1/csv/:id (admin only).
func (h *CSVHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	actor, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.csv.Delete(c.UserContext(), actor.ID, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
