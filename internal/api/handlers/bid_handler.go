package handlers

import (
	"net/http"

	"gig-marketplace/internal/api/middleware"
	"gig-marketplace/internal/services"
	"gig-marketplace/pkg/logger"

	"github.com/labstack/echo/v4"
)

type BidHandler struct {
	bids *services.BidService
	hire *services.HireService
	log  logger.Logger
}

type CreateBidRequest struct {
	GigID   string  `json:"gigId"`
	Message string  `json:"message"`
	Price   float64 `json:"price"`
}

type HireRequest struct {
	BidID string `json:"bidId"`
}

func NewBidHandler(bids *services.BidService, hire *services.HireService, log logger.Logger) *BidHandler {
	return &BidHandler{
		bids: bids,
		hire: hire,
		log:  log,
	}
}

func (h *BidHandler) CreateBid(c echo.Context) error {
	var req CreateBidRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Response{Message: "Invalid request body"})
	}
	if req.GigID == "" {
		return c.JSON(http.StatusBadRequest, Response{Message: "gigId is required"})
	}
	if req.Price <= 0 {
		return c.JSON(http.StatusBadRequest, Response{Message: "Price must be positive"})
	}

	freelancer := middleware.CurrentUser(c)
	bid, err := h.bids.CreateBid(c.Request().Context(), req.GigID, freelancer.ID, req.Message, req.Price)
	if err != nil {
		h.log.Error("Failed to create bid", "error", err)
		return respondError(c, err)
	}

	return respond(c, http.StatusCreated, bid, "Bid created successfully")
}

func (h *BidHandler) ListBidsForGig(c echo.Context) error {
	gig, bids, err := h.bids.ListBidsForGig(c.Request().Context(), c.Param("gigId"))
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, http.StatusOK, map[string]interface{}{
		"gig":  gig,
		"bids": bids,
	}, "Bids fetched successfully")
}

// HireBid assigns the gig to one bid. Conflicts surface as 409 so the client
// re-fetches current state instead of retrying blindly.
func (h *BidHandler) HireBid(c echo.Context) error {
	var req HireRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Response{Message: "Invalid request body"})
	}
	if req.BidID == "" {
		return c.JSON(http.StatusBadRequest, Response{Message: "bidId is required"})
	}

	requester := middleware.CurrentUser(c)
	bid, err := h.hire.Hire(c.Request().Context(), c.Param("gigId"), req.BidID, requester.ID)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, http.StatusOK, bid, "Bid hired successfully")
}
