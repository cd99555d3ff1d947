package handlers

import (
	"net/http"

	"gig-marketplace/internal/api/middleware"
	"gig-marketplace/internal/services"
	"gig-marketplace/pkg/logger"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	users *services.UserService
	log   logger.Logger
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewUserHandler(users *services.UserService, log logger.Logger) *UserHandler {
	return &UserHandler{
		users: users,
		log:   log,
	}
}

func (h *UserHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Response{Message: "Invalid request body"})
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, Response{Message: "Name, email and password are required"})
	}

	user, err := h.users.Signup(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.log.Error("Failed to sign up user", "error", err)
		return respondError(c, err)
	}

	return respond(c, http.StatusCreated, user, "User created successfully")
}

func (h *UserHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Response{Message: "Invalid request body"})
	}

	user, token, err := h.users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, http.StatusOK, map[string]interface{}{
		"user":  user,
		"token": token,
	}, "Login successful")
}

func (h *UserHandler) Me(c echo.Context) error {
	return respond(c, http.StatusOK, middleware.CurrentUser(c), "User fetched successfully")
}
