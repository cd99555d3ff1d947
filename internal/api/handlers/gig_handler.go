package handlers

import (
	"net/http"

	"gig-marketplace/internal/api/middleware"
	"gig-marketplace/internal/services"
	"gig-marketplace/pkg/logger"

	"github.com/labstack/echo/v4"
)

type GigHandler struct {
	gigs *services.GigService
	log  logger.Logger
}

type GigRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Budget      float64 `json:"budget"`
}

func NewGigHandler(gigs *services.GigService, log logger.Logger) *GigHandler {
	return &GigHandler{
		gigs: gigs,
		log:  log,
	}
}

func (h *GigHandler) CreateGig(c echo.Context) error {
	var req GigRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Response{Message: "Invalid request body"})
	}
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, Response{Message: "Title is required"})
	}
	if req.Budget <= 0 {
		return c.JSON(http.StatusBadRequest, Response{Message: "Budget must be positive"})
	}

	owner := middleware.CurrentUser(c)
	gig, err := h.gigs.CreateGig(c.Request().Context(), owner.ID, req.Title, req.Description, req.Budget)
	if err != nil {
		h.log.Error("Failed to create gig", "error", err)
		return respondError(c, err)
	}

	return respond(c, http.StatusCreated, gig, "Gig created successfully")
}

func (h *GigHandler) ListGigs(c echo.Context) error {
	gigs, err := h.gigs.ListGigs(c.Request().Context())
	if err != nil {
		h.log.Error("Failed to list gigs", "error", err)
		return respondError(c, err)
	}

	return respond(c, http.StatusOK, gigs, "Gigs fetched successfully")
}

func (h *GigHandler) GetGig(c echo.Context) error {
	gig, err := h.gigs.GetGig(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, http.StatusOK, gig, "Gig fetched successfully")
}

func (h *GigHandler) UpdateGig(c echo.Context) error {
	var req GigRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Response{Message: "Invalid request body"})
	}

	requester := middleware.CurrentUser(c)
	gig, err := h.gigs.UpdateGig(c.Request().Context(), c.Param("id"), requester.ID,
		req.Title, req.Description, req.Budget)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, http.StatusOK, gig, "Gig updated successfully")
}

func (h *GigHandler) DeleteGig(c echo.Context) error {
	requester := middleware.CurrentUser(c)
	if err := h.gigs.DeleteGig(c.Request().Context(), c.Param("id"), requester.ID); err != nil {
		return respondError(c, err)
	}

	return respond(c, http.StatusOK, nil, "Gig deleted successfully")
}
