package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tavolo/seating/internal/allocation"
	"github.com/tavolo/seating/internal/model"
	"github.com/tavolo/seating/internal/repository"
)

// AdminSeatHandler manages the seat topology: seats, their sibling
// adjacency, and per-row online eligibility on the ledger.  Topology
// edits can change what availability queries would return, so every
// mutation drops the availability snapshots.
type AdminSeatHandler struct {
	SeatRepo       *repository.SeatRepo
	SeatPeriodRepo *repository.SeatPeriodRepo
	Inv            allocation.Invalidator // may be nil when no cache is attached
}

// NewAdminSeatHandler constructs an AdminSeatHandler.
func NewAdminSeatHandler(seatRepo *repository.SeatRepo, seatPeriodRepo *repository.SeatPeriodRepo, inv allocation.Invalidator) *AdminSeatHandler {
	if seatRepo == nil || seatPeriodRepo == nil {
		panic("nil repository passed to NewAdminSeatHandler")
	}
	return &AdminSeatHandler{SeatRepo: seatRepo, SeatPeriodRepo: seatPeriodRepo, Inv: inv}
}

func (h *AdminSeatHandler) invalidate(c echo.Context) {
	if h.Inv != nil {
		h.Inv.Invalidate(c.Request().Context())
	}
}

// seatBody is the create payload.  Capacity is restricted to the
// fixed set of physical table sizes; the allocator's buckets only
// ever select 2 and 10, but 4-tops are valid topology all the same.
type seatBody struct {
	Prefix   string `json:"prefix"`
	No       uint32 `json:"no"`
	Capacity uint32 `json:"capacity"`
}

func (b seatBody) valid() bool {
	if b.Prefix == "" || b.No == 0 {
		return false
	}
	return b.Capacity == 2 || b.Capacity == 4 || b.Capacity == 10
}

// CreateSeat handles POST /v1/admin/seats.
func (h *AdminSeatHandler) CreateSeat(c echo.Context) error {
	var body seatBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !body.valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "prefix, no and capacity (2, 4 or 10) are required"})
	}
	seat := &model.Seat{Prefix: body.Prefix, No: body.No, Capacity: body.Capacity}
	if err := h.SeatRepo.Create(c.Request().Context(), seat); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	h.invalidate(c)
	return c.JSON(http.StatusCreated, echo.Map{"id": seat.ID, "label": seat.Label()})
}

// CreateSeatsBulk handles POST /v1/admin/seats/bulk for initial floor
// setup.
func (h *AdminSeatHandler) CreateSeatsBulk(c echo.Context) error {
	var body struct {
		Seats []seatBody `json:"seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.Seats) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats is required"})
	}
	seats := make([]model.Seat, 0, len(body.Seats))
	for _, sb := range body.Seats {
		if !sb.valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "every seat needs prefix, no and capacity (2, 4 or 10)"})
		}
		seats = append(seats, model.Seat{Prefix: sb.Prefix, No: sb.No, Capacity: sb.Capacity})
	}
	if err := h.SeatRepo.CreateBulk(c.Request().Context(), seats); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	h.invalidate(c)
	return c.JSON(http.StatusCreated, echo.Map{"created": len(seats)})
}

// ListSeats handles GET /v1/admin/seats, siblings included.
func (h *AdminSeatHandler) ListSeats(c echo.Context) error {
	seats, err := h.SeatRepo.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"seats": seats})
}

// GetSeat handles GET /v1/admin/seats/:id.
func (h *AdminSeatHandler) GetSeat(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}
	seat, err := h.SeatRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSeatNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, seat)
}

// DeleteSeat handles DELETE /v1/admin/seats/:id.  Seats with ledger
// history cannot be removed.
func (h *AdminSeatHandler) DeleteSeat(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}
	if err := h.SeatRepo.Delete(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrSeatNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat has ledger history"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
	}
	h.invalidate(c)
	return c.JSON(http.StatusOK, echo.Map{"status": "deleted"})
}

// AddSibling handles POST /v1/admin/seats/:id/siblings.  Sibling links
// are directed; the body may request the reverse link in the same call
// since combinability is almost always mutual on the floor.
func (h *AdminSeatHandler) AddSibling(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}
	var body struct {
		SiblingID uint64 `json:"sibling_id"`
		Mutual    bool   `json:"mutual"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.SiblingID == 0 || body.SiblingID == id {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sibling_id must name a different seat"})
	}
	ctx := c.Request().Context()
	if err := h.SeatRepo.AddSibling(ctx, id, body.SiblingID); err != nil {
		if errors.Is(err, repository.ErrSeatNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if body.Mutual {
		if err := h.SeatRepo.AddSibling(ctx, body.SiblingID, id); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
	}
	h.invalidate(c)
	return c.JSON(http.StatusCreated, echo.Map{"status": "linked"})
}

// RemoveSibling handles DELETE /v1/admin/seats/:id/siblings/:sibling_id.
func (h *AdminSeatHandler) RemoveSibling(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}
	sibID, err := strconv.ParseUint(c.Param("sibling_id"), 10, 64)
	if err != nil || sibID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sibling id"})
	}
	if err := h.SeatRepo.RemoveSibling(c.Request().Context(), id, sibID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "sibling link not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	h.invalidate(c)
	return c.JSON(http.StatusOK, echo.Map{"status": "unlinked"})
}

// SetOnlineBookable handles PATCH /v1/admin/seat-periods/:id/online.
// Flipping a row's online eligibility changes what the online channel
// sees, so the snapshots are dropped afterwards.
func (h *AdminSeatHandler) SetOnlineBookable(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat period id"})
	}
	var body struct {
		Bookable *bool `json:"can_online_booked"`
	}
	if err := c.Bind(&body); err != nil || body.Bookable == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "can_online_booked is required"})
	}
	if err := h.SeatPeriodRepo.SetOnlineBookable(c.Request().Context(), id, *body.Bookable); err != nil {
		if errors.Is(err, repository.ErrSeatPeriodNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat period not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	h.invalidate(c)
	return c.JSON(http.StatusOK, echo.Map{"status": "updated"})
}
