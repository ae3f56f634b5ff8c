package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"taskguardian/internal/policy"
	"taskguardian/internal/repository"
	"taskguardian/pkg/logger"
)

// Signup creates a user account and returns a session token right away.
// Validation failures answer 401 here, not 400; that is the published
// contract of this endpoint.
func (h *Handler) Signup(c *fiber.Ctx) error {
	type SignupRequest struct {
		Username string `json:"username" validate:"required,min=3,max=50"`
		Password string `json:"password" validate:"required,min=5,max=1024"`
		Role     string `json:"role" validate:"required"`
	}

	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in signup", zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Please provide all required fields"})
	}
	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during signup", zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Please provide all required fields"})
	}
	if !policy.ValidRole(req.Role) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid Role"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.ErrorLogger.Error("Error hashing password", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}

	user, err := h.Users.Create(req.Username, string(hashedPassword), req.Role)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			logger.SecurityLogger.Warn("Duplicate username", zap.String("username", req.Username))
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Username already exists"})
		}
		logger.ErrorLogger.Error("Error creating user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}

	session, err := h.Tokens.Issue(user.ID, policy.Role(user.Role))
	if err != nil {
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}

	logger.AuditLogger.Info("User signed up", zap.Int("user_id", user.ID), zap.String("role", user.Role))
	return c.JSON(fiber.Map{
		"state":   "success",
		"session": session,
	})
}

// Login authenticates by username ("name" on the wire) and password.
func (h *Handler) Login(c *fiber.Ctx) error {
	type LoginRequest struct {
		Name     string `json:"name" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in login", zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Please provide all required fields"})
	}
	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during login", zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Please provide all required fields"})
	}

	user, err := h.Users.GetByUsername(req.Name)
	if err != nil {
		logger.SecurityLogger.Warn("User not found", zap.String("username", req.Name))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid Credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.SecurityLogger.Warn("Invalid password", zap.String("username", req.Name))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid Credentials"})
	}

	session, err := h.Tokens.Issue(user.ID, policy.Role(user.Role))
	if err != nil {
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}

	logger.AuditLogger.Info("Login success", zap.Int("user_id", user.ID), zap.String("role", user.Role))
	return c.JSON(fiber.Map{
		"state":   "success",
		"session": session,
	})
}
