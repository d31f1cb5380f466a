package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tavolo/seating/internal/availability"
	"github.com/tavolo/seating/internal/model"
)

// AvailabilityHandler serves read-only availability queries.  The
// route is public: unauthenticated callers see the online channel, and
// staff terminals select the in-store view explicitly.
type AvailabilityHandler struct {
	Agg *availability.Aggregator
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(agg *availability.Aggregator) *AvailabilityHandler {
	if agg == nil {
		panic("nil aggregator passed to NewAvailabilityHandler")
	}
	return &AvailabilityHandler{Agg: agg}
}

// Get handles GET /v1/availability.  Query parameters:
//
//	channel      ONLINE (default) or IN_STORE
//	from, to     RFC3339 instants or YYYY-MM-DD dates; both required
//	granularity  instant or date; defaults to date when from/to are
//	             plain dates, instant otherwise
//
// The response groups per-period remaining capacity into calendar days
// in the restaurant's timezone, ascending.  Days with no materialized
// period are omitted.
func (h *AvailabilityHandler) Get(c echo.Context) error {
	ch := model.Channel(c.QueryParam("channel"))
	if ch == "" {
		ch = model.ChannelOnline
	}
	if !ch.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid channel"})
	}

	from, fromDateOnly, err := parseInstant(c.QueryParam("from"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from"})
	}
	to, toDateOnly, err := parseInstant(c.QueryParam("to"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to"})
	}

	g := availability.Granularity(c.QueryParam("granularity"))
	if g == "" {
		g = availability.GranularityInstant
		if fromDateOnly && toDateOnly {
			g = availability.GranularityDate
		}
	}

	days, err := h.Agg.GetAvailability(c.Request().Context(), ch, from, to, g)
	if err != nil {
		if errors.Is(err, availability.ErrInvalidRange) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid range"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability lookup failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"days": days})
}

// parseInstant accepts RFC3339 instants and bare YYYY-MM-DD dates,
// reporting which form was used so the caller can pick a default
// granularity.
func parseInstant(raw string) (time.Time, bool, error) {
	if raw == "" {
		return time.Time{}, false, errors.New("missing value")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
