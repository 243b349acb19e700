package handler

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/dermai-app/dermai-server/internal/api/http/middleware"
	"github.com/dermai-app/dermai-server/internal/logger"
	"github.com/dermai-app/dermai-server/internal/model"
	"github.com/dermai-app/dermai-server/internal/service"
)

// AuthService defines registration, login and logout operations.
type AuthService interface {
	Register(ctx context.Context, params service.RegisterParams) (model.User, model.Session, error)
	Login(ctx context.Context, email, password, deviceInfo, ipAddress string) (model.User, model.Session, error)
	Logout(ctx context.Context, token string) error
	GetUser(ctx context.Context, userID uuid.UUID) (model.User, error)
}

// Auth handles HTTP endpoints for authentication.
type Auth struct {
	authService AuthService
	logger      *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, logger *logger.Logger) *Auth {
	return &Auth{authService: authService, logger: logger}
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account and issues a session.
func (h *Auth) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return fiber.NewError(fiber.StatusBadRequest, "valid email is required")
	}
	if len(req.Password) < 6 {
		return fiber.NewError(fiber.StatusBadRequest, "password must be at least 6 characters")
	}

	user, session, err := h.authService.Register(c.UserContext(), service.RegisterParams{
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		DeviceInfo: c.Get(fiber.HeaderUserAgent),
		IPAddress:  c.IP(),
	})
	if err != nil {
		return err
	}

	return created(c, "registration successful", fiber.Map{
		"user":          marshalUser(user),
		"session_token": session.Token,
		"expires_at":    session.ExpiresAt,
	})
}

// Login verifies credentials and issues a session.
func (h *Auth) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and password are required")
	}

	user, session, err := h.authService.Login(c.UserContext(), req.Email, req.Password,
		c.Get(fiber.HeaderUserAgent), c.IP())
	if err != nil {
		return err
	}

	return ok(c, "login successful", fiber.Map{
		"user":          marshalUser(user),
		"session_token": session.Token,
		"expires_at":    session.ExpiresAt,
	})
}

// Logout revokes the current session.
func (h *Auth) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), middleware.SessionToken(c)); err != nil {
		return err
	}

	return ok(c, "logged out", nil)
}

// Validate confirms the session and returns the current user.
func (h *Auth) Validate(c *fiber.Ctx) error {
	user, err := h.authService.GetUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}

	return ok(c, "session valid", fiber.Map{
		"user": marshalUser(user),
	})
}
