package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crisis-service/internal/api/dto"
	"github.com/spec-kit/crisis-service/internal/domain"
	"github.com/spec-kit/crisis-service/internal/export"
	"github.com/spec-kit/crisis-service/internal/service"
	apperrors "github.com/spec-kit/crisis-service/pkg/util"
)

// CrisesHandler serves the crisis endpoints.
type CrisesHandler struct {
	service  *service.CrisisService
	basePath string
}

// NewCrisesHandler constructs handler. basePath prefixes Location headers.
func NewCrisesHandler(crisisService *service.CrisisService, basePath string) *CrisesHandler {
	return &CrisesHandler{service: crisisService, basePath: basePath}
}

// List GET /crises.
func (h *CrisesHandler) List(c *fiber.Ctx) error {
	crises, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.FromDomainList(crises))
}

// Get GET /crises/:id.
func (h *CrisesHandler) Get(c *fiber.Ctx) error {
	id, err := crisisID(c)
	if err != nil {
		return err
	}
	crisis, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromDomain(crisis))
}

// Search GET /crises/search?query=.
func (h *CrisesHandler) Search(c *fiber.Ctx) error {
	crises, err := h.service.Search(c.UserContext(), c.Query("query"))
	if err != nil {
		return err
	}
	return c.JSON(dto.FromDomainList(crises))
}

// Filter GET /crises/filter?severity=&status=.
func (h *CrisesHandler) Filter(c *fiber.Ctx) error {
	filter := domain.CrisisFilter{
		Severity: c.Query("severity"),
		Status:   c.Query("status"),
	}
	crises, err := h.service.Filter(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromDomainList(crises))
}

// Statistics GET /crises/statistics.
func (h *CrisesHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.service.Statistics(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.FromStatistics(stats))
}

// Export GET /crises/export.
func (h *CrisesHandler) Export(c *fiber.Ctx) error {
	workbook, err := h.service.Export(c.UserContext())
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, export.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="crises.xlsx"`)
	return c.Send(workbook)
}

// Create POST /crises.
func (h *CrisesHandler) Create(c *fiber.Ctx) error {
	var req dto.Crisis
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	crisis, err := h.service.Create(c.UserContext(), req.ToDomain())
	if err != nil {
		return err
	}
	c.Location(h.basePath + "/crises/" + strconv.FormatInt(crisis.ID, 10))
	return c.Status(fiber.StatusCreated).JSON(dto.FromDomain(crisis))
}

// Update PUT /crises/:id.
func (h *CrisesHandler) Update(c *fiber.Ctx) error {
	id, err := crisisID(c)
	if err != nil {
		return err
	}
	var req dto.Crisis
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.Update(c.UserContext(), id, req.ToDomain()); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Delete DELETE /crises/:id.
func (h *CrisesHandler) Delete(c *fiber.Ctx) error {
	id, err := crisisID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func crisisID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.NewBadRequest("crisis id must be an integer", map[string]any{"id": raw})
	}
	return id, nil
}
