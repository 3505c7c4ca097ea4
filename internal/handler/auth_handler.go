package handler

import (
	"shramik-backend/internal/middleware"
	"shramik-backend/internal/model"
	"shramik-backend/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	users *usecase.UserUsecase
}

func NewAuthHandler(users *usecase.UserUsecase) *AuthHandler {
	return &AuthHandler{users: users}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,min=10,max=15"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=employer worker"`
	City     string `json:"city" validate:"max=100"`
	Skills   string `json:"skills" validate:"max=500"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name   *string `json:"name" validate:"omitempty,max=100"`
	Phone  *string `json:"phone" validate:"omitempty,min=10,max=15"`
	City   *string `json:"city" validate:"omitempty,max=100"`
	Skills *string `json:"skills" validate:"omitempty,max=500"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	res, err := h.users.Register(c.UserContext(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     model.Role(req.Role),
		City:     req.City,
		Skills:   req.Skills,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Registration successful, check your email to verify your account",
		"data":    res,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	res, err := h.users.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Login successful", res)
}

func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	res, err := h.users.Refresh(c.UserContext(), middleware.Identity(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Token refreshed", res)
}

func (h *AuthHandler) RequestVerification(c *fiber.Ctx) error {
	if err := h.users.RequestVerification(c.UserContext(), middleware.Identity(c)); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Verification email sent", nil)
}

// VerifyEmail is opened from the link in the verification email.
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return respondError(c, usecase.ErrInvalidInput.WithMessage("token is required"))
	}

	user, err := h.users.VerifyEmail(c.UserContext(), token)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Email verified, sign in again to continue", user)
}

func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	user, err := h.users.Profile(c.UserContext(), middleware.Identity(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Profile loaded", user)
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := h.users.UpdateProfile(c.UserContext(), middleware.Identity(c), usecase.ProfileInput{
		Name:   req.Name,
		Phone:  req.Phone,
		City:   req.City,
		Skills: req.Skills,
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Profile updated", user)
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	if err := h.users.ChangePassword(c.UserContext(), middleware.Identity(c), req.OldPassword, req.NewPassword); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Password changed", nil)
}
