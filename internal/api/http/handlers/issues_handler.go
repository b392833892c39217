package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/openvoice/feedback-service/internal/api/dto"
	"github.com/openvoice/feedback-service/internal/domain"
	"github.com/openvoice/feedback-service/internal/service"
	apperrors "github.com/openvoice/feedback-service/pkg/util"
)

// IssuesHandler serves the public submission and tracking endpoints.
type IssuesHandler struct {
	service *service.IssueService
}

// NewIssuesHandler constructs the handler.
func NewIssuesHandler(issueService *service.IssueService) *IssuesHandler {
	return &IssuesHandler{service: issueService}
}

// Create POST /api/v1/issues. Anonymous; responds with the full record
// including the freshly minted ticket id.
func (h *IssuesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	issue, err := h.service.CreateIssue(c.UserContext(), service.IssueCreateInput{
		Department:  req.Department,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewIssueResponse(issue)})
}

// Lookup GET /api/v1/tickets/:ticketID. Case- and whitespace-insensitive.
func (h *IssuesHandler) Lookup(c *fiber.Ctx) error {
	issue, err := h.service.LookupByTicketID(c.UserContext(), c.Params("ticketID"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewIssueResponse(issue)})
}

// Meta GET /api/v1/meta. Exposes the closed enumerations for form rendering.
func (h *IssuesHandler) Meta(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": dto.MetaResponse{
		Departments: domain.Departments,
		Categories:  domain.Categories,
	}})
}
