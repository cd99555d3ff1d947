package handlers

import (
	"net/http"

	"gig-marketplace/internal/domain"

	"github.com/labstack/echo/v4"
)

// Response is the uniform result envelope. Clients must test Success, not
// parse Message.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

func respond(c echo.Context, status int, data interface{}, message string) error {
	return c.JSON(status, Response{Success: true, Data: data, Message: message})
}

func respondError(c echo.Context, err error) error {
	return c.JSON(statusOf(err), Response{Success: false, Data: nil, Message: domain.MessageOf(err)})
}

func statusOf(err error) int {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
