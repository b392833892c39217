package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/openvoice/feedback-service/internal/api/dto"
	"github.com/openvoice/feedback-service/internal/auth"
	apperrors "github.com/openvoice/feedback-service/pkg/util"
)

// AdminHandler manages the administrator session endpoints.
type AdminHandler struct {
	session auth.Session
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(session auth.Session) *AdminHandler {
	return &AdminHandler{session: session}
}

// Login POST /api/v1/admin/login.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}
	token, err := h.session.Login(req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{Token: token}})
}

// Logout POST /api/v1/admin/logout.
func (h *AdminHandler) Logout(c *fiber.Ctx) error {
	if token, ok := auth.TokenFromContext(c); ok {
		h.session.Logout(token)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"logged_out": true}})
}
