package handlers

import (
	"database/sql"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskguardian/internal/policy"
	"taskguardian/pkg/logger"
)

// UpdateUserRole overwrites a user's role. ADMIN only.
func (h *Handler) UpdateUserRole(c *fiber.Ctx) error {
	who := caller(c)

	if err := policy.CanUpdateRole(who); err != nil {
		logger.SecurityLogger.Warn("Role update denied",
			zap.Int("user_id", who.ID), zap.String("role", string(who.Role)))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	type UpdateRoleRequest struct {
		ID   int    `json:"id"`
		Role string `json:"role"`
	}
	var req UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil || req.ID == 0 || req.Role == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Please provide all required fields"})
	}
	if !policy.ValidRole(req.Role) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid Role"})
	}

	user, err := h.Users.UpdateRole(req.ID, req.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		}
		logger.ErrorLogger.Error("Error updating user role", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}

	logger.AuditLogger.Info("User role updated",
		zap.Int("target_id", user.ID), zap.String("new_role", user.Role), zap.Int("admin_id", who.ID))
	return c.JSON(fiber.Map{
		"state": "success",
		"user":  user,
	})
}
