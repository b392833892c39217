package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/openvoice/feedback-service/internal/api/dto"
	"github.com/openvoice/feedback-service/internal/liveview"
	"github.com/openvoice/feedback-service/internal/service"
)

// DashboardHandler serves admin reads from the live view and the resolve
// action through the registry. Resolution reaches the view only via the
// change feed, never by local mutation.
type DashboardHandler struct {
	view    *liveview.View
	service *service.IssueService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(view *liveview.View, issueService *service.IssueService) *DashboardHandler {
	return &DashboardHandler{view: view, service: issueService}
}

// Dashboard GET /api/v1/admin/dashboard. Derived entirely from the local
// snapshot; no backend query per request.
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	sortOrder := liveview.SortOrder(c.Query("sort", string(liveview.SortNewest)))
	if sortOrder != liveview.SortOldest {
		sortOrder = liveview.SortNewest
	}

	board := liveview.BuildDashboard(h.view.Snapshot(), liveview.DashboardQuery{
		Search:   c.Query("search"),
		Category: c.Query("category", liveview.CategoryAll),
		Sort:     sortOrder,
	})

	return c.JSON(fiber.Map{"data": dto.DashboardResponse{
		Stats:      board.Stats,
		Unresolved: dto.NewIssueResponses(board.Unresolved),
		Resolved:   dto.NewIssueResponses(board.Resolved),
		Stale:      h.view.Stale(),
	}})
}

// Refresh POST /api/v1/admin/dashboard/refresh. Manual re-initialize of the
// live view, the recovery path for a dropped feed subscription.
func (h *DashboardHandler) Refresh(c *fiber.Ctx) error {
	if err := h.view.Initialize(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"refreshed": true}})
}

// Resolve POST /api/v1/admin/issues/:id/resolve. Re-resolving is a no-op
// success returning the unchanged record.
func (h *DashboardHandler) Resolve(c *fiber.Ctx) error {
	issue, err := h.service.ResolveIssue(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewIssueResponse(issue)})
}
