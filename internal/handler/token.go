package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tavolo/seating/internal/utils"
)

// TokenHandler issues channel tokens.  It is only mounted when the
// application runs in the dev environment; production deployments get
// their tokens from the identity provider in front of this service.
type TokenHandler struct {
	Secret string
}

// Issue handles POST /v1/dev/tokens.  The body names the subject and
// role; the response carries a signed bearer token valid for one hour.
func (h *TokenHandler) Issue(c echo.Context) error {
	var body struct {
		Subject string `json:"subject"`
		Role    string `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Subject == "" || (body.Role != RoleOnline && body.Role != RoleStaff) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "subject and role (ONLINE or STAFF) are required"})
	}
	tok, err := utils.NewChannelToken(h.Secret, body.Subject, body.Role, 60)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token signing failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"token":      tok.Token,
		"expires_at": tok.Exp.Format(time.RFC3339),
	})
}
